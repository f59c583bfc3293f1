// Package materialize produces working checkouts of repositories at given
// commits from an NFS-mounted shared cache of bare mirrors.
//
// Layout, for a repository identifier ending in <namespace>/<name>.git:
//
//	<shared_root>/<namespace>/<name>.git    mirror, never written here
//	<working_root>/<namespace>/<name>       checkout, created once, reused
//	<working_root>/<namespace>/.<name>.lock cross-process lock
//	<working_root>/.gitfarm/ledger.json     checkout ledger
//
// A checkout borrows the mirror's objects (git clone --shared), so creating
// one copies no history, and later materializations never fetch: the mirror
// is assumed to be kept current out of band.
//
// Basic usage:
//
//	m, err := materialize.New(settings, git.NewCLI())
//	if err != nil {
//	    return err
//	}
//	path, err := m.Materialize(ctx, "https://git.example.com/org/app.git", sha)
//	switch {
//	case errors.HasCode(err, errors.CodeRefNotFound):
//	    // the mirror has not caught up yet; retry later
//	case err != nil:
//	    return err
//	}
//
// Materializations of one repository are serialized by a per-repository
// lock; different repositories proceed in parallel. Checkouts are removed
// only by Prune or StartGC.
package materialize
