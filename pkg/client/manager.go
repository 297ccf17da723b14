package client

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/pkg/funding"
	"MedFund-Backend/pkg/lifecycle"
	"context"
	"errors"
	"fmt"
)

// Manager runs admin lifecycle actions through a Client. Each action is
// checked against the cached record, sent as a single write, and answered
// with the record refetched from the server.
type Manager struct {
	client *Client
	store  *Store
}

func NewManager(client *Client, store *Store) *Manager {
	if store == nil {
		store = NewStore()
	}
	return &Manager{client: client, store: store}
}

func (m *Manager) Store() *Store { return m.store }

// Request returns the cached record, fetching it on a miss.
func (m *Manager) Request(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	if r, ok := m.store.Get(id); ok {
		return r, nil
	}
	return m.fetch(ctx, id)
}

func (m *Manager) Requests(ctx context.Context) ([]domain.DonationRequestResponse, error) {
	if list, ok := m.store.List(); ok {
		return list, nil
	}
	list, err := m.client.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	m.store.PutList(list)
	return list, nil
}

func (m *Manager) fetch(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	r, err := m.client.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.store.Remove(id)
		}
		return domain.DonationRequestResponse{}, err
	}
	m.store.Put(r)
	return r, nil
}

func (m *Manager) Approve(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	return m.transition(ctx, id, lifecycle.StatusApproved)
}

func (m *Manager) Reject(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	return m.transition(ctx, id, lifecycle.StatusRejected)
}

// Achieve marks an approved request achieved. The server accepts it even
// before the goal is reached and records it as an override.
func (m *Manager) Achieve(ctx context.Context, id string) (domain.DonationRequestResponse, error) {
	return m.transition(ctx, id, lifecycle.StatusAchieved)
}

func (m *Manager) transition(ctx context.Context, id string, target lifecycle.Status) (domain.DonationRequestResponse, error) {
	current, err := m.Request(ctx, id)
	if err != nil {
		return domain.DonationRequestResponse{}, err
	}
	if _, err := lifecycle.Decide(lifecycle.Status(current.Status), target, current.Progress.Reached()); err != nil {
		return domain.DonationRequestResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	_, writeErr := m.client.UpdateStatus(ctx, id, target, current.Version)
	m.store.Invalidate(id)
	fresh, fetchErr := m.fetch(ctx, id)
	if writeErr != nil {
		// the refetch only refreshes the store here; the write error wins
		return domain.DonationRequestResponse{}, writeErr
	}
	return fresh, fetchErr
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.client.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			m.store.Remove(id)
		}
		return err
	}
	m.store.Remove(id)
	return nil
}

// Progress recomputes funding progress from the request's donation rows.
func (m *Manager) Progress(ctx context.Context, id string) (funding.Progress, error) {
	res, err := m.client.RequestDonations(ctx, id)
	if err != nil {
		return funding.Progress{}, err
	}

	records := make([]funding.Record, 0, len(res.Donations))
	for _, d := range res.Donations {
		records = append(records, funding.Record{Amount: d.Amount, Status: d.Status, DonorID: d.DonorID})
	}
	return funding.Reconcile(res.Summary.Goal, records), nil
}
