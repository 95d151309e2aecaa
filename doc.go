/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package tokenregistry implements a non-fungible-token ownership registry
whose collection is partitioned into named "supply extensions":
sub-collections with independently pledged target supplies that together
present one unified, enumerable token space.

A Collection is provisioned from a YAML manifest declaring the collection
identity, its ordered extensions and the token ranges assigned to each.
Once provisioned, the Collection is the single write surface: mint, burn,
transfer, safe transfer with recipient acknowledgement, approvals and
supply finalization. Every read the registry answers (owner lookups,
balances, global and per-extension enumeration) is O(1) or linear in the
number of extensions.

Basic Usage:

	m, _ := manifest.Load("collection.yaml")
	c, _ := tokenregistry.New(m,
		tokenregistry.WithEventLog(eventlog.NewMemoryStore()))

	_ = c.Mint(ctx, "alice", 1)
	_ = c.Transfer(ctx, "alice", "bob", 1)
	owner, _ := c.OwnerOf(1)

Every mutation is appended to the configured event log, from which the
audit package can rebuild and verify a collection.

For more information, see the documentation at
https://github.com/suparena/tokenregistry
*/
package tokenregistry
