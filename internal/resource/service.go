package resource

import (
	"context"

	"github.com/mentorhub/go-services/pkg/logger"
)

// Service orchestrates one resource type: permission hook, audit
// stamping, store adapter calls and not-found mapping. The same logic
// serves every resource; only Config differs per instantiation.
type Service struct {
	cfg    Config
	store  Store
	policy Policy
}

// NewService wires a service for one resource. A nil policy means
// AllowAll: any authenticated caller may perform any operation.
func NewService(cfg Config, store Store, policy Policy) *Service {
	if policy == nil {
		policy = AllowAll{}
	}
	return &Service{cfg: cfg, store: store, policy: policy}
}

func (s *Service) Config() Config { return s.cfg }

// Create stamps the breadcrumb into "created", persists the document
// and returns it as stored. Client-supplied _id and created fields are
// discarded; the store assigns identity.
func (s *Service) Create(ctx context.Context, tok Token, bc Breadcrumb, data Document) (Document, error) {
	if err := s.policy.Allow(tok, OpCreate, s.cfg.Name); err != nil {
		return nil, err
	}
	if data == nil {
		data = Document{}
	}
	delete(data, "_id")
	delete(data, "created")
	data["created"] = bc.Record()

	id, err := s.store.Create(ctx, data)
	if err != nil {
		return nil, wrapInternal(err, "failed to create "+s.cfg.Name)
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapInternal(err, "failed to read back created "+s.cfg.Name)
	}
	if doc == nil {
		return nil, NotFoundf("%s %s not found", s.cfg.Name, id)
	}
	logger.Infof("created %s %s for user %s", s.cfg.Name, id, tok.UserID)
	return doc, nil
}

// Get fetches one document by identifier.
func (s *Service) Get(ctx context.Context, tok Token, id string) (Document, error) {
	if err := s.policy.Allow(tok, OpRead, s.cfg.Name); err != nil {
		return nil, err
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapInternal(err, "failed to retrieve "+s.cfg.Name)
	}
	if doc == nil {
		return nil, NotFoundf("%s %s not found", s.cfg.Name, id)
	}
	return doc, nil
}

// List returns one infinite-scroll batch of sorted, filtered
// documents. Parameter validation happens in BuildListQuery; its
// errors propagate unchanged to the boundary.
func (s *Service) List(ctx context.Context, tok Token, params ListParams) (*Page, error) {
	if err := s.policy.Allow(tok, OpRead, s.cfg.Name); err != nil {
		return nil, err
	}
	q, err := BuildListQuery(params, s.cfg.AllowedSortFields)
	if err != nil {
		return nil, err
	}
	page, err := s.store.List(ctx, q)
	if err != nil {
		return nil, wrapInternal(err, "failed to retrieve "+s.cfg.Name+" batch")
	}
	logger.Debugf("retrieved %d %s documents (has_more=%v) for user %s",
		len(page.Items), s.cfg.Name, page.HasMore, tok.UserID)
	return page, nil
}

// Update merges the supplied fields into an existing document.
// Unspecified fields stay untouched; _id and created are immutable and
// silently dropped from the payload.
func (s *Service) Update(ctx context.Context, tok Token, id string, patch Document) (Document, error) {
	if err := s.policy.Allow(tok, OpUpdate, s.cfg.Name); err != nil {
		return nil, err
	}
	if patch == nil {
		patch = Document{}
	}
	delete(patch, "_id")
	delete(patch, "created")
	if len(patch) == 0 {
		return nil, Validationf("no updatable fields provided")
	}
	doc, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, wrapInternal(err, "failed to update "+s.cfg.Name)
	}
	if doc == nil {
		return nil, NotFoundf("%s %s not found", s.cfg.Name, id)
	}
	logger.Infof("updated %s %s for user %s", s.cfg.Name, id, tok.UserID)
	return doc, nil
}
