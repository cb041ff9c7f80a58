package projections

import (
	"context"
	"fmt"
	"testing"

	"coachdesk/internal/adapters/storage/customer"
	"coachdesk/internal/adapters/storage/storagetest"
	"coachdesk/internal/application/listutil"
)

// TestQueryGetCustomerList_Pages verifies paging, clamping and status filtering.
func TestQueryGetCustomerList_Pages(t *testing.T) {
	db := storagetest.Open(t)
	for i := 1; i <= 7; i++ {
		status := "active"
		if i == 5 {
			status = "paused"
		}
		storagetest.InsertCustomer(t, db, fmt.Sprintf("c%d", i), status)
	}
	deps := GetCustomerListDeps{CustomerStore: customer.NewSQLiteStore(db)}
	ctx := context.Background()

	got, err := QueryGetCustomerList(ctx, GetCustomerListQuery{Page: 2, PerPage: 5}, deps)
	if err != nil {
		t.Fatalf("QueryGetCustomerList: %v", err)
	}
	if got.Page.Total != 7 || got.Page.TotalPages != 2 {
		t.Errorf("Page = %+v, want 7 rows over 2 pages", got.Page)
	}
	var ids []string
	for _, c := range got.Customers {
		ids = append(ids, c.ID)
	}
	if fmt.Sprint(ids) != "[c6 c7]" {
		t.Errorf("page 2 = %v, want [c6 c7]", ids)
	}

	got, err = QueryGetCustomerList(ctx, GetCustomerListQuery{Page: 9, PerPage: 5}, deps)
	if err != nil {
		t.Fatalf("QueryGetCustomerList(page 9): %v", err)
	}
	if got.Page.Page != 2 || len(got.Customers) != 2 || got.Customers[0].ID != "c6" {
		t.Errorf("clamped page = %d with %+v, want page 2 starting at c6", got.Page.Page, got.Customers)
	}

	got, err = QueryGetCustomerList(ctx, GetCustomerListQuery{Sort: customer.SortStatus, Dir: listutil.Desc, PerPage: 5}, deps)
	if err != nil {
		t.Fatalf("QueryGetCustomerList(status desc): %v", err)
	}
	if len(got.Customers) != 5 || got.Customers[0].ID != "c5" {
		t.Errorf("status desc = %+v, want the paused c5 first", got.Customers)
	}

	got, err = QueryGetCustomerList(ctx, GetCustomerListQuery{Status: "paused", PerPage: 20}, deps)
	if err != nil {
		t.Fatalf("QueryGetCustomerList(paused): %v", err)
	}
	if len(got.Customers) != 1 || got.Customers[0].ID != "c5" {
		t.Errorf("paused = %+v, want only c5", got.Customers)
	}
}

// TestQueryGetCustomerList_NoMatches verifies an empty result is a non-nil slice.
func TestQueryGetCustomerList_NoMatches(t *testing.T) {
	db := storagetest.Open(t)
	deps := GetCustomerListDeps{CustomerStore: customer.NewSQLiteStore(db)}

	got, err := QueryGetCustomerList(context.Background(), GetCustomerListQuery{Search: "nobody"}, deps)
	if err != nil {
		t.Fatalf("QueryGetCustomerList: %v", err)
	}
	if got.Customers == nil || len(got.Customers) != 0 {
		t.Errorf("Customers = %#v, want empty non-nil", got.Customers)
	}
	if got.Page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", got.Page.TotalPages)
	}
}
