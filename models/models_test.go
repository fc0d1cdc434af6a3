package models_test

import (
	"testing"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
)

func TestTransactionCredited(t *testing.T) {
	tests := []struct {
		name string
		txn  models.Transaction
		want bool
	}{
		{"approved credit", models.Transaction{Amount: 10, Status: models.TxStatusApproved}, true},
		{"paid credit", models.Transaction{Amount: 10, Status: models.TxStatusPaid}, true},
		{"pending credit", models.Transaction{Amount: 10, Status: models.TxStatusPending}, false},
		{"rejected credit", models.Transaction{Amount: 10, Status: models.TxStatusRejected}, false},
		{"approved debit", models.Transaction{Amount: -10, Status: models.TxStatusApproved}, false},
		{"zero amount", models.Transaction{Amount: 0, Status: models.TxStatusApproved}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.txn.Credited(); got != tt.want {
				t.Errorf("Credited() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInt64ListScan(t *testing.T) {
	var list models.Int64List
	if err := list.Scan([]byte("[100,200,300]")); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(list) != 3 || list[0] != 100 || list[2] != 300 {
		t.Errorf("Scan produced %v, want [100 200 300]", list)
	}

	if err := list.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if list != nil {
		t.Errorf("Scan(nil) should clear the list, got %v", list)
	}
}

func TestJSONMapScan(t *testing.T) {
	var m models.JSONMap
	if err := m.Scan([]byte(`{"offer_id":"abc","count":2}`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if m["offer_id"] != "abc" {
		t.Errorf(`m["offer_id"] = %v, want "abc"`, m["offer_id"])
	}

	if err := m.Scan(42); err == nil {
		t.Error("scanning a non-JSON value should fail")
	}
}
