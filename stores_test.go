/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tokenregistry_test

import (
	"context"
	"testing"

	"github.com/suparena/tokenregistry"
	"github.com/suparena/tokenregistry/datastore/mock"
	"github.com/suparena/tokenregistry/storagemodels"
)

func TestStoreManagerRoundTrip(t *testing.T) {
	sm := tokenregistry.NewStoreManager()

	eventStore := mock.New[storagemodels.TransferEvent]().
		WithGetKeyFunc(func(ev storagemodels.TransferEvent) string { return ev.ID })
	snapshotStore := mock.New[storagemodels.ExtensionSnapshot]().
		WithGetKeyFunc(func(s storagemodels.ExtensionSnapshot) string { return s.Name })

	if err := tokenregistry.RegisterDataStore[storagemodels.TransferEvent](sm, "events", eventStore); err != nil {
		t.Fatalf("register events: %v", err)
	}
	if err := tokenregistry.RegisterDataStore[storagemodels.ExtensionSnapshot](sm, "snapshots", snapshotStore); err != nil {
		t.Fatalf("register snapshots: %v", err)
	}

	got, err := tokenregistry.GetDataStore[storagemodels.TransferEvent](sm, "events")
	if err != nil {
		t.Fatalf("get events: %v", err)
	}

	ev := storagemodels.NewTransferEvent("Apex Editions", storagemodels.EventMint, "", "alice", 1, 0)
	if err := got.Put(context.Background(), ev); err != nil {
		t.Fatalf("Put through manager failed: %v", err)
	}
	if eventStore.Len() != 1 {
		t.Fatalf("event store holds %d records", eventStore.Len())
	}
}

func TestStoreManagerErrors(t *testing.T) {
	sm := tokenregistry.NewStoreManager()
	store := mock.New[storagemodels.TransferEvent]()

	if err := tokenregistry.RegisterDataStore[storagemodels.TransferEvent](sm, "events", store); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := tokenregistry.RegisterDataStore[storagemodels.TransferEvent](sm, "events", store); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if _, err := tokenregistry.GetDataStore[storagemodels.TransferEvent](sm, "missing"); err == nil {
		t.Fatal("expected lookup of unknown name to fail")
	}

	// Names are scoped per record type.
	if _, err := tokenregistry.GetDataStore[storagemodels.ExtensionSnapshot](sm, "events"); err == nil {
		t.Fatal("expected lookup under a different type to fail")
	}
}

func TestTypedStoresRemoveAndList(t *testing.T) {
	ts := tokenregistry.NewTypedStores[storagemodels.TransferEvent]()
	store := mock.New[storagemodels.TransferEvent]()

	if err := ts.Register("primary", store); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if names := ts.List(); len(names) != 1 || names[0] != "primary" {
		t.Fatalf("List = %v", names)
	}

	if err := ts.Remove("primary"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := ts.Remove("primary"); err == nil {
		t.Fatal("expected second remove to fail")
	}
	if names := ts.List(); len(names) != 0 {
		t.Fatalf("List after remove = %v", names)
	}
}
