package client

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/presenters"
	"MedFund-Backend/pkg/funding"
	"MedFund-Backend/pkg/lifecycle"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const adminToken = "admin-token"

// fakeAPI serves the admin endpoints from memory and counts what it was asked.
type fakeAPI struct {
	mu        sync.Mutex
	requests  map[string]domain.DonationRequestResponse
	donations map[string][]*domain.DonationResponse
	gets      int
	puts      int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		requests:  make(map[string]domain.DonationRequestResponse),
		donations: make(map[string][]*domain.DonationResponse),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/GetAllDonationRequest", api.auth(api.list))
	mux.HandleFunc("GET /admin/GetSingleDonationRequest/{id}", api.auth(api.get))
	mux.HandleFunc("PUT /admin/UpdateRequestStatus/{id}/{status}", api.auth(api.update))
	mux.HandleFunc("DELETE /admin/deleteDonationRequest/{id}", api.auth(api.remove))
	mux.HandleFunc("GET /admin/GetRequestDonations/{id}", api.auth(api.requestDonations))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) seed(id string, status lifecycle.Status, goal int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g := decimal.NewFromInt(goal)
	a.requests[id] = domain.DonationRequestResponse{
		ID:             id,
		DonationAmount: g,
		Status:         status.String(),
		Version:        1,
		Progress:       funding.Reconcile(g, nil),
		CreatedAt:      time.Now(),
	}
}

func (a *fakeAPI) addDonation(requestID, donorID string, amount int64, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.donations[requestID] = append(a.donations[requestID], &domain.DonationResponse{
		RequestID: requestID,
		DonorID:   donorID,
		Amount:    decimal.NewFromInt(amount),
		Status:    status,
	})
}

// force changes a request behind every client's back.
func (a *fakeAPI) force(id string, status lifecycle.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.requests[id]
	r.Status = status.String()
	r.Version++
	a.requests[id] = r
}

func (a *fakeAPI) counts() (gets, puts int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gets, a.puts
}

func (a *fakeAPI) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+adminToken {
			reply(w, http.StatusUnauthorized, domain.MessageFailedGetUser, errors.New("invalid token"), nil)
			return
		}
		next(w, r)
	}
}

func (a *fakeAPI) progress(req domain.DonationRequestResponse) funding.Progress {
	records := make([]funding.Record, 0)
	for _, d := range a.donations[req.ID] {
		records = append(records, funding.Record{Amount: d.Amount, Status: d.Status, DonorID: d.DonorID})
	}
	return funding.Reconcile(req.DonationAmount, records)
}

func (a *fakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.DonationRequestResponse, 0, len(a.requests))
	for _, r := range a.requests {
		r.Progress = a.progress(r)
		out = append(out, r)
	}
	reply(w, http.StatusOK, domain.MessageSuccessGetRequests, nil, out)
}

func (a *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gets++
	req, ok := a.requests[r.PathValue("id")]
	if !ok {
		reply(w, http.StatusNotFound, domain.MessageFailedGetRequest, domain.ErrRequestNotFound, nil)
		return
	}
	req.Progress = a.progress(req)
	reply(w, http.StatusOK, domain.MessageSuccessGetRequest, nil, req)
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.puts++
	id := r.PathValue("id")
	req, ok := a.requests[id]
	if !ok {
		reply(w, http.StatusNotFound, domain.MessageFailedUpdateRequestStatus, domain.ErrRequestNotFound, nil)
		return
	}
	if m := r.Header.Get("If-Match"); m != "" {
		v, _ := strconv.Atoi(strings.Trim(m, `"`))
		if v != req.Version {
			reply(w, http.StatusPreconditionFailed, domain.MessageFailedUpdateRequestStatus, domain.ErrVersionMismatch, nil)
			return
		}
	}

	d, err := lifecycle.Decide(lifecycle.Status(req.Status), lifecycle.Status(r.PathValue("status")), a.progress(req).Reached())
	if err != nil {
		reply(w, http.StatusConflict, domain.MessageFailedUpdateRequestStatus, err, nil)
		return
	}
	if d.Changed {
		req.Status = d.To.String()
		req.Version++
		a.requests[id] = req
	}
	req.Progress = a.progress(req)
	reply(w, http.StatusOK, domain.MessageSuccessUpdateRequestStatus, nil,
		domain.StatusUpdateResult{Request: &req, Changed: d.Changed, Override: d.Override})
}

func (a *fakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := a.requests[id]; !ok {
		reply(w, http.StatusNotFound, domain.MessageFailedDeleteRequest, domain.ErrRequestNotFound, nil)
		return
	}
	delete(a.requests, id)
	delete(a.donations, id)
	reply(w, http.StatusOK, domain.MessageSuccessDeleteRequest, nil, nil)
}

func (a *fakeAPI) requestDonations(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	req, ok := a.requests[r.PathValue("id")]
	if !ok {
		reply(w, http.StatusNotFound, domain.MessageFailedGetDonations, domain.ErrRequestNotFound, nil)
		return
	}
	reply(w, http.StatusOK, domain.MessageSuccessGetDonations, nil, domain.RequestDonationsResponse{
		RequestID: req.ID,
		Donations: a.donations[req.ID],
		Summary:   domain.NewDonationSummary(a.progress(req)),
	})
}

func reply(w http.ResponseWriter, code int, message string, err error, data any) {
	res := presenters.Response{Status: err == nil, Message: message, Data: data}
	if err != nil {
		res.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(res)
}
