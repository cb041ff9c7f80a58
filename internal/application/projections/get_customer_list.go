package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coachdesk/internal/adapters/storage/customer"
	"coachdesk/internal/application/listutil"
	domainCustomer "coachdesk/internal/domain/customer"
)

// GetCustomerListQuery carries query parameters.
type GetCustomerListQuery struct {
	Status    string // empty lists every status
	AdvisorID string // empty lists every advisor's customers
	Search    string
	Sort      string // one of customer.SortColumns; empty sorts by name
	Dir       string // listutil.Asc or listutil.Desc
	Page      int
	PerPage   int
}

// CustomerRow is one line of the customer list.
type CustomerRow struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Goal       string    `json:"goal"`
	Checkpoint int       `json:"checkpoint"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetCustomerListResult carries the query result.
type GetCustomerListResult struct {
	Customers []CustomerRow     `json:"customers"`
	Page      listutil.PageInfo `json:"page"`
}

// GetCustomerListDeps holds dependencies for GetCustomerList.
type GetCustomerListDeps struct {
	CustomerStore CustomerStore
}

// QueryGetCustomerList retrieves one page of customers.
// PRE: Valid query parameters
// POST: Returns at most PerPage rows; Page is clamped to the last page
// INVARIANT: Customers is non-nil even when nothing matches
func QueryGetCustomerList(ctx context.Context, query GetCustomerListQuery, deps GetCustomerListDeps) (GetCustomerListResult, error) {
	filter := customer.ListFilter{
		Status:    query.Status,
		AdvisorID: query.AdvisorID,
		Search:    strings.TrimSpace(query.Search),
		Sort:      query.Sort,
		Desc:      query.Dir == listutil.Desc,
	}
	total, err := deps.CustomerStore.Count(ctx, filter)
	if err != nil {
		return GetCustomerListResult{}, fmt.Errorf("count customers: %w", err)
	}

	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	customers, err := deps.CustomerStore.List(ctx, filter)
	if err != nil {
		return GetCustomerListResult{}, fmt.Errorf("list customers: %w", err)
	}

	rows := make([]CustomerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, toCustomerRow(c))
	}
	return GetCustomerListResult{Customers: rows, Page: page}, nil
}

func toCustomerRow(c domainCustomer.Customer) CustomerRow {
	return CustomerRow{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Status:     c.Status,
		Goal:       c.Goal,
		Checkpoint: c.CurrentCheckpoint,
		CreatedAt:  c.CreatedAt,
	}
}
