package pipeline

import (
	"context"
	"testing"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

func TestTestConnectionListsContainers(t *testing.T) {
	fake := newFakeClient("appdb")
	fake.addContainer("users", "/id", nil)
	fake.addContainer("orders", "/id", nil)

	containers, created, err := TestConnection(context.Background(), fake, "appdb", ConnectOptions{})
	if err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
	if created {
		t.Fatal("existing database must not be reported as created")
	}
	if len(containers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(containers))
	}
}

func TestTestConnectionMissingDatabase(t *testing.T) {
	fake := newFakeClient("appdb")
	delete(fake.databases, "appdb")

	_, _, err := TestConnection(context.Background(), fake, "appdb", ConnectOptions{})
	if !clientpkg.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if fake.createDatabaseCalls != 0 {
		t.Fatalf("database must not be created without the option, saw %d calls", fake.createDatabaseCalls)
	}
}

func TestTestConnectionCreatesDatabase(t *testing.T) {
	fake := newFakeClient("appdb")
	delete(fake.databases, "appdb")

	containers, created, err := TestConnection(context.Background(), fake, "appdb", ConnectOptions{CreateDatabase: true})
	if err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true after provisioning the database")
	}
	if len(containers) != 0 {
		t.Fatalf("fresh database should have no containers, got %d", len(containers))
	}
	if fake.createDatabaseCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", fake.createDatabaseCalls)
	}
}

func TestDescribeAndDeleteDatabase(t *testing.T) {
	fake := newFakeClient("appdb")
	fake.addContainer("users", "/id", nil)

	info, err := DescribeDatabase(context.Background(), fake, "appdb")
	if err != nil {
		t.Fatalf("DescribeDatabase returned error: %v", err)
	}
	if len(info.Containers) != 1 || info.Containers[0] != "users" {
		t.Fatalf("unexpected containers: %v", info.Containers)
	}

	if err := DeleteDatabase(context.Background(), fake, "appdb"); err != nil {
		t.Fatalf("DeleteDatabase returned error: %v", err)
	}
	if err := DeleteDatabase(context.Background(), fake, "appdb"); !clientpkg.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
