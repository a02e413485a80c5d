package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"shipping-label-service/internal/addressval"
	"shipping-label-service/internal/model"
	"shipping-label-service/internal/repository"
)

// In-memory fakes for the repository interfaces, used across the
// service tests.

type fakeShipmentRepo struct {
	mu    sync.Mutex
	docs  map[string]model.Shipment
	order []string
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{docs: make(map[string]model.Shipment)}
}

func (f *fakeShipmentRepo) InsertMany(_ context.Context, shipments []*model.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, s := range shipments {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		f.docs[s.ID] = *s
		f.order = append(f.order, s.ID)
	}
	return nil
}

func (f *fakeShipmentRepo) FindByID(_ context.Context, id string) (*model.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := doc
	return &out, nil
}

func (f *fakeShipmentRepo) FindByIDs(_ context.Context, ids []string) ([]*model.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Shipment
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			copied := doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeShipmentRepo) Find(_ context.Context, filter repository.ShipmentFilter) ([]*model.Shipment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*model.Shipment
	for _, id := range f.order {
		doc := f.docs[id]
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(&doc, filter.Search) {
			continue
		}
		copied := doc
		matched = append(matched, &copied)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func matchesSearch(s *model.Shipment, search string) bool {
	search = strings.ToLower(search)
	for _, field := range []string{s.OrderNo, s.ShipToFirstName, s.ShipToLastName, s.ShipToAddress, s.ShipToCity} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (f *fakeShipmentRepo) FindAll(_ context.Context) ([]*model.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Shipment
	for _, id := range f.order {
		doc := f.docs[id]
		out = append(out, &doc)
	}
	return out, nil
}

func (f *fakeShipmentRepo) Save(_ context.Context, s *model.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[s.ID]; !ok {
		return repository.ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	f.docs[s.ID] = *s
	return nil
}

func (f *fakeShipmentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeShipmentRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := f.docs[id]; ok {
			delete(f.docs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeShipmentRepo) MarkPurchased(_ context.Context, ids []string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			doc.Purchased = true
			doc.PurchasedAt = &at
			f.docs[id] = doc
		}
	}
	return nil
}

func (f *fakeShipmentRepo) get(id string) model.Shipment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

type fakeAddressRepo struct {
	addresses []*model.SavedAddress
}

func (f *fakeAddressRepo) FindAll(context.Context) ([]*model.SavedAddress, error) {
	return f.addresses, nil
}

func (f *fakeAddressRepo) FindByID(_ context.Context, id string) (*model.SavedAddress, error) {
	for _, a := range f.addresses {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAddressRepo) FindDefault(context.Context) (*model.SavedAddress, error) {
	for _, a := range f.addresses {
		if a.IsDefault {
			return a, nil
		}
	}
	if len(f.addresses) > 0 {
		return f.addresses[0], nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAddressRepo) Insert(_ context.Context, a *model.SavedAddress) error {
	f.addresses = append(f.addresses, a)
	return nil
}

func (f *fakeAddressRepo) Delete(_ context.Context, id string) error {
	for i, a := range f.addresses {
		if a.ID == id {
			f.addresses = append(f.addresses[:i], f.addresses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakePackageRepo struct {
	packages []*model.SavedPackage
}

func (f *fakePackageRepo) FindAll(context.Context) ([]*model.SavedPackage, error) {
	return f.packages, nil
}

func (f *fakePackageRepo) FindByID(_ context.Context, id string) (*model.SavedPackage, error) {
	for _, p := range f.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePackageRepo) Insert(_ context.Context, p *model.SavedPackage) error {
	f.packages = append(f.packages, p)
	return nil
}

func (f *fakePackageRepo) Delete(_ context.Context, id string) error {
	for i, p := range f.packages {
		if p.ID == id {
			f.packages = append(f.packages[:i], f.packages[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// stubValidator returns a canned result without touching the network.
type stubValidator struct {
	result addressval.Result
}

func (s *stubValidator) Validate(context.Context, addressval.Address) addressval.Result {
	return s.result
}

// recordingPublisher captures purchase events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []PurchaseEvent
	err    error
}

func (r *recordingPublisher) PublishLabelsPurchased(_ context.Context, event PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func zapNop() *zap.Logger { return zap.NewNop() }

func validResult() addressval.Result {
	return addressval.Result{
		Status:  model.AddressValid,
		Source:  "usps",
		Message: "Address validated",
	}
}

func defaultSavedAddress() *model.SavedAddress {
	return &model.SavedAddress{
		ID:        "addr-default",
		Name:      "Warehouse",
		FirstName: "Print",
		LastName:  "TTS",
		Address:   "502 W Arrow Hwy, STE P",
		City:      "San Dimas",
		State:     "CA",
		ZipCode:   "91773",
		IsDefault: true,
	}
}

func newTestService(shipRepo *fakeShipmentRepo, addrRepo *fakeAddressRepo, pkgRepo *fakePackageRepo) *ShipmentService {
	if shipRepo == nil {
		shipRepo = newFakeShipmentRepo()
	}
	if addrRepo == nil {
		addrRepo = &fakeAddressRepo{addresses: []*model.SavedAddress{defaultSavedAddress()}}
	}
	if pkgRepo == nil {
		pkgRepo = &fakePackageRepo{}
	}
	validator := &stubValidator{result: addressval.Result{Status: model.AddressPending, Source: "none"}}
	return NewShipmentService(shipRepo, addrRepo, pkgRepo, validator, &recordingPublisher{}, zap.NewNop())
}
