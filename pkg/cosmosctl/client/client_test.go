package client

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

func TestPartitionKeyField(t *testing.T) {
	cases := []struct {
		path   string
		expect string
	}{
		{path: "/id", expect: "id"},
		{path: "/tenantId", expect: "tenantId"},
		{path: "/address/city", expect: "address"},
		{path: "id", expect: "id"},
		{path: "", expect: ""},
		{path: "  /pk  ", expect: "pk"},
	}
	for _, tc := range cases {
		if got := PartitionKeyField(tc.path); got != tc.expect {
			t.Fatalf("PartitionKeyField(%q) = %q, want %q", tc.path, got, tc.expect)
		}
	}
}

func TestItemID(t *testing.T) {
	if got := (Item{"id": "u1"}).ID(); got != "u1" {
		t.Fatalf("expected u1, got %q", got)
	}
	if got := (Item{"id": 42}).ID(); got != "" {
		t.Fatalf("non-string id must yield empty, got %q", got)
	}
	if got := (Item{}).ID(); got != "" {
		t.Fatalf("missing id must yield empty, got %q", got)
	}
}

func TestItemHasField(t *testing.T) {
	it := Item{"tenantId": "t1", "empty": nil}
	if !it.HasField("tenantId") {
		t.Fatal("expected tenantId to be present")
	}
	if it.HasField("empty") {
		t.Fatal("nil value must not count as present")
	}
	if it.HasField("missing") {
		t.Fatal("missing field must not count as present")
	}
	if it.HasField("") {
		t.Fatal("empty field name must not count as present")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		isNotFound bool
		isConflict bool
	}{
		{
			name:       "404 maps to not found",
			err:        &azcore.ResponseError{StatusCode: http.StatusNotFound},
			isNotFound: true,
		},
		{
			name:       "409 maps to conflict",
			err:        &azcore.ResponseError{StatusCode: http.StatusConflict},
			isConflict: true,
		},
		{
			name: "other status passes through",
			err:  &azcore.ResponseError{StatusCode: http.StatusTooManyRequests},
		},
		{
			name: "plain error passes through",
			err:  errors.New("dial tcp: connection refused"),
		},
		{
			name:       "wrapped response error still classified",
			err:        fmt.Errorf("outer: %w", &azcore.ResponseError{StatusCode: http.StatusNotFound}),
			isNotFound: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("op", tc.err)
			if got == nil {
				t.Fatal("classify must not drop the error")
			}
			if IsNotFound(got) != tc.isNotFound {
				t.Fatalf("IsNotFound = %v, want %v (err: %v)", IsNotFound(got), tc.isNotFound, got)
			}
			if IsConflict(got) != tc.isConflict {
				t.Fatalf("IsConflict = %v, want %v (err: %v)", IsConflict(got), tc.isConflict, got)
			}
		})
	}

	if classify("op", nil) != nil {
		t.Fatal("classify(nil) must be nil")
	}
}

func TestSchemaConflictError(t *testing.T) {
	base := &SchemaConflictError{Container: "users", Want: "/tenantId", Got: "/id"}
	wrapped := fmt.Errorf("create container: %w", base)
	if !IsSchemaConflict(wrapped) {
		t.Fatal("expected wrapped schema conflict to be detected")
	}
	if IsSchemaConflict(errors.New("boom")) {
		t.Fatal("plain error must not be a schema conflict")
	}
	msg := base.Error()
	for _, want := range []string{"users", "/tenantId", "/id"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message %q missing %q", msg, want)
		}
	}
}

func TestPartitionKeyValue(t *testing.T) {
	cases := []struct {
		name   string
		item   Item
		path   string
		expect azcosmos.PartitionKey
	}{
		{
			name:   "string",
			item:   Item{"pk": "t1"},
			path:   "/pk",
			expect: azcosmos.NewPartitionKeyString("t1"),
		},
		{
			name:   "number",
			item:   Item{"pk": float64(7)},
			path:   "/pk",
			expect: azcosmos.NewPartitionKeyNumber(7),
		},
		{
			name:   "bool",
			item:   Item{"pk": true},
			path:   "/pk",
			expect: azcosmos.NewPartitionKeyBool(true),
		},
		{
			name:   "missing value",
			item:   Item{"id": "u1"},
			path:   "/pk",
			expect: azcosmos.NullPartitionKey,
		},
		{
			name:   "empty path",
			item:   Item{"pk": "t1"},
			path:   "",
			expect: azcosmos.NullPartitionKey,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := partitionKeyValue(tc.item, tc.path)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Fatalf("partitionKeyValue = %+v, want %+v", got, tc.expect)
			}
		})
	}
}

func TestNewCosmosClientValidatesParameters(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
		key      string
		database string
	}{
		{name: "missing endpoint", key: "a2V5", database: "db"},
		{name: "missing key", endpoint: "https://acct.documents.azure.com", database: "db"},
		{name: "missing database", endpoint: "https://acct.documents.azure.com", key: "a2V5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCosmosClient(tc.endpoint, tc.key, tc.database); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
