package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/apperr"
	"github.com/helpmesh/support-platform/internal/authz"
	"github.com/helpmesh/support-platform/internal/model"
	"github.com/helpmesh/support-platform/internal/quota"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/pkg/logger"
	"github.com/helpmesh/support-platform/pkg/metrics"
)

// BotFallbackMessage is the bot's reply when no FAQ matches.
const BotFallbackMessage = "I'm sorry, I don't have information about that. Would you like to speak with a human agent?"

// FAQService handles a tenant's FAQ knowledge base and the bot matcher
// reading from it.
type FAQService struct {
	faqs     FAQStore
	tenants  TenantStore
	enforcer *quota.Enforcer
	logger   *logger.Logger
}

// NewFAQService creates a new FAQ service.
func NewFAQService(faqs FAQStore, tenants TenantStore, enforcer *quota.Enforcer, log *logger.Logger) *FAQService {
	return &FAQService{faqs: faqs, tenants: tenants, enforcer: enforcer, logger: log}
}

// ListByTenant returns a tenant's FAQ trees.
func (s *FAQService) ListByTenant(ctx context.Context, p model.Principal, tenantID string) ([]model.FAQNode, error) {
	if d := authz.Authorize(p, authz.ActionFAQList, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionFAQList, d)
	}
	faqs, err := s.faqs.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal("failed to list FAQs", err)
	}
	return faqs, nil
}

// ListTopLevel returns a tenant's FAQ trees rooted at depth 1.
func (s *FAQService) ListTopLevel(ctx context.Context, p model.Principal, tenantID string) ([]model.FAQNode, error) {
	if d := authz.Authorize(p, authz.ActionFAQList, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionFAQList, d)
	}
	faqs, err := s.faqs.ListTopLevel(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal("failed to list FAQs", err)
	}
	return faqs, nil
}

// Get returns one FAQ tree by root id. Trees outside the caller's tenant are
// reported as absent.
func (s *FAQService) Get(ctx context.Context, p model.Principal, id string) (*model.FAQNode, error) {
	faq, err := s.faqs.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("FAQ not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load FAQ", err)
	}
	if d := authz.Authorize(p, authz.ActionFAQRead, faq.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionFAQRead, "FAQ")
	}
	return faq, nil
}

// Search returns a tenant's FAQ trees whose root matches the term.
func (s *FAQService) Search(ctx context.Context, p model.Principal, tenantID, term string) ([]model.FAQNode, error) {
	if d := authz.Authorize(p, authz.ActionFAQSearch, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionFAQSearch, d)
	}
	if strings.TrimSpace(term) == "" {
		return nil, apperr.Validation("search term cannot be empty")
	}
	faqs, err := s.faqs.Search(ctx, tenantID, term)
	if err != nil {
		return nil, apperr.Internal("failed to search FAQs", err)
	}
	return faqs, nil
}

// Stats reports a tenant's FAQ usage against its subscription limit.
func (s *FAQService) Stats(ctx context.Context, p model.Principal, tenantID string) (*model.FAQStats, error) {
	if d := authz.Authorize(p, authz.ActionFAQList, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionFAQList, d)
	}
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}
	count, err := s.faqs.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperr.Internal("failed to count FAQs", err)
	}

	stats := &model.FAQStats{
		TenantID:  tenantID,
		Tier:      tenant.Tier,
		Current:   int(count),
		Max:       tenant.Limits.MaxFAQs,
		Remaining: tenant.Limits.MaxFAQs - int(count),
	}
	if stats.Remaining < 0 {
		stats.Remaining = 0
	}
	if stats.Max > 0 {
		stats.UsagePercent = float64(stats.Current) / float64(stats.Max) * 100
	}
	return stats, nil
}

// Create stores a new FAQ tree. The quota counts stored trees, not branches,
// so a tree of any shape occupies one slot.
func (s *FAQService) Create(ctx context.Context, p model.Principal, tenantID string, req *model.CreateFAQRequest) (*model.FAQNode, error) {
	if d := authz.Authorize(p, authz.ActionFAQCreate, tenantID); !d.Allowed {
		return nil, denied(p, authz.ActionFAQCreate, d)
	}
	if err := validateFAQRequest(req); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tenant", err)
	}
	if err := s.enforcer.CheckAndReserve(ctx, tenant, quota.KindFAQ); err != nil {
		if apperr.KindOf(err) == apperr.KindQuotaExceeded {
			metrics.QuotaDenialsTotal.WithLabelValues(tenantID, string(quota.KindFAQ)).Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	faq := buildFAQTree(req, tenantID, p.UserID, 1, now)
	if err := s.faqs.Insert(ctx, faq); err != nil {
		return nil, apperr.Internal("failed to create FAQ", err)
	}

	s.logger.Info("faq created",
		zap.String("faq_id", faq.ID),
		zap.String("tenant_id", tenantID),
	)
	return faq, nil
}

// Update replaces an FAQ tree's content and entire subtree. Depths are
// reassigned from the root down.
func (s *FAQService) Update(ctx context.Context, p model.Principal, id string, req *model.UpdateFAQRequest) (*model.FAQNode, error) {
	faq, err := s.faqs.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperr.NotFound("FAQ not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load FAQ", err)
	}
	if d := authz.Authorize(p, authz.ActionFAQUpdate, faq.TenantID); !d.Allowed {
		return nil, deniedAsNotFound(p, authz.ActionFAQUpdate, "FAQ")
	}
	createReq := &model.CreateFAQRequest{Question: req.Question, Answer: req.Answer, Children: req.Children}
	if err := validateFAQRequest(createReq); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := buildFAQTree(createReq, faq.TenantID, p.UserID, faq.Depth, now)
	updated.ID = faq.ID
	updated.CreatedBy = faq.CreatedBy
	updated.CreatedAt = faq.CreatedAt
	updated.UpdatedBy = p.UserID

	if err := s.faqs.Replace(ctx, updated); err != nil {
		if err == store.ErrNotFound {
			return nil, apperr.NotFound("FAQ not found")
		}
		return nil, apperr.Internal("failed to update FAQ", err)
	}
	return updated, nil
}

// Delete removes an FAQ tree and all its descendants, freeing one quota slot.
func (s *FAQService) Delete(ctx context.Context, p model.Principal, id string) error {
	faq, err := s.faqs.Get(ctx, id)
	if err == store.ErrNotFound {
		return apperr.NotFound("FAQ not found")
	}
	if err != nil {
		return apperr.Internal("failed to load FAQ", err)
	}
	if d := authz.Authorize(p, authz.ActionFAQDelete, faq.TenantID); !d.Allowed {
		return deniedAsNotFound(p, authz.ActionFAQDelete, "FAQ")
	}

	if err := s.faqs.Delete(ctx, id, faq.TenantID); err != nil {
		if err == store.ErrNotFound {
			return apperr.NotFound("FAQ not found")
		}
		return apperr.Internal("failed to delete FAQ", err)
	}
	s.logger.Info("faq deleted",
		zap.String("faq_id", id),
		zap.String("tenant_id", faq.TenantID),
	)
	return nil
}

// MatchForBot resolves a customer message against a tenant's FAQ trees. The
// match is a two-way case-insensitive substring test between the message and
// each tree's root question; the first hit wins. Nested follow-up questions
// are navigation options, not match candidates. The second return is false
// when the fallback message is returned.
func (s *FAQService) MatchForBot(ctx context.Context, tenantID, text string) (string, bool, error) {
	roots, err := s.faqs.ListTopLevel(ctx, tenantID)
	if err != nil {
		return "", false, apperr.Internal("failed to load FAQs", err)
	}

	needle := strings.ToLower(strings.TrimSpace(text))
	if needle != "" {
		for i := range roots {
			question := strings.ToLower(roots[i].Question)
			if question != "" && (strings.Contains(needle, question) || strings.Contains(question, needle)) {
				metrics.BotMatchesTotal.WithLabelValues(tenantID, "matched").Inc()
				return roots[i].Answer, true, nil
			}
		}
	}
	metrics.BotMatchesTotal.WithLabelValues(tenantID, "fallback").Inc()
	return BotFallbackMessage, false, nil
}

func validateFAQRequest(req *model.CreateFAQRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return apperr.Validation("question cannot be empty")
	}
	if strings.TrimSpace(req.Answer) == "" {
		return apperr.Validation("answer cannot be empty")
	}
	for i := range req.Children {
		if err := validateFAQRequest(&req.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// buildFAQTree materializes a request into stored nodes, assigning ids and
// depths top-down so every child sits at parent depth + 1.
func buildFAQTree(req *model.CreateFAQRequest, tenantID, createdBy string, depth int, now time.Time) *model.FAQNode {
	node := &model.FAQNode{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenantID,
		Depth:     depth,
		Question:  req.Question,
		Answer:    req.Answer,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range req.Children {
		child := buildFAQTree(&req.Children[i], tenantID, createdBy, depth+1, now)
		node.Children = append(node.Children, *child)
	}
	return node
}
