package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"artisan_backend/internal/quotes/repository"
	"artisan_backend/internal/quotes/transport"
	"artisan_backend/platform/apperr"
	"artisan_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Column widths. Oversized input is clamped, never rejected.
const (
	maxQuoteNumberLen    = 50
	maxTitleLen          = 255
	maxNameLen           = 255
	maxUnitLen           = 50
	maxDurationUnitLen   = 20
	maxCategoryLen       = 100
	maxCustomCategoryLen = 255
	maxFileNameLen       = 255
	maxContentTypeLen    = 255
	maxIPAddressLen      = 64
)

const amountPlaces = 2

// normalizeAmount rounds to cents and rejects negative values.
func normalizeAmount(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, apperr.Validationf("%s must not be negative", field)
	}
	return d.Round(amountPlaces), nil
}

func normalizeAmountPtr(field string, d *decimal.Decimal) (*decimal.Decimal, error) {
	if d == nil {
		return nil, nil
	}
	v, err := normalizeAmount(field, *d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func clampQuoteNumber(s string) string {
	return sanitize.Truncate(strings.TrimSpace(s), maxQuoteNumberLen)
}

// ── Requests → models ────────────────────────────────────────────────────────

func buildTasks(quoteID uuid.UUID, reqs []transport.TaskRequest) ([]repository.Task, error) {
	tasks := make([]repository.Task, 0, len(reqs))
	for i, tr := range reqs {
		unitPrice, err := normalizeAmount(fmt.Sprintf("tasks[%d].unitPrice", i), tr.UnitPrice)
		if err != nil {
			return nil, err
		}
		if tr.Quantity.IsNegative() {
			return nil, apperr.Validationf("tasks[%d].quantity must not be negative", i)
		}

		task := repository.Task{
			ID:             uuid.New(),
			QuoteID:        quoteID,
			Name:           sanitize.Truncate(sanitize.Text(tr.Name), maxNameLen),
			Description:    sanitize.TextPtr(nilIfEmpty(tr.Description)),
			Quantity:       tr.Quantity,
			Unit:           sanitize.Truncate(tr.Unit, maxUnitLen),
			UnitPrice:      unitPrice,
			Duration:       tr.Duration,
			DurationUnit:   sanitize.Truncate(tr.DurationUnit, maxDurationUnitLen),
			Category:       sanitize.Truncate(tr.Category, maxCategoryLen),
			CustomCategory: sanitize.Truncate(tr.CustomCategory, maxCustomCategoryLen),
			SortOrder:      i,
			Materials:      make([]repository.Material, 0, len(tr.Materials)),
		}

		for j, mr := range tr.Materials {
			price, err := normalizeAmount(fmt.Sprintf("tasks[%d].materials[%d].unitPrice", i, j), mr.UnitPrice)
			if err != nil {
				return nil, err
			}
			taskID := task.ID
			task.Materials = append(task.Materials, repository.Material{
				ID:        uuid.New(),
				QuoteID:   quoteID,
				TaskID:    &taskID,
				Name:      sanitize.Truncate(sanitize.Text(mr.Name), maxNameLen),
				Quantity:  mr.Quantity,
				Unit:      sanitize.Truncate(mr.Unit, maxUnitLen),
				UnitPrice: price,
				SortOrder: j,
			})
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func buildFiles(quoteID uuid.UUID, reqs []transport.FileRequest, now time.Time) []repository.File {
	files := make([]repository.File, 0, len(reqs))
	for _, fr := range reqs {
		files = append(files, repository.File{
			ID:          uuid.New(),
			QuoteID:     quoteID,
			Category:    fr.Category,
			FileName:    sanitize.Truncate(fr.FileName, maxFileNameLen),
			FileKey:     fr.FileKey,
			ContentType: sanitize.Truncate(strings.TrimSpace(fr.ContentType), maxContentTypeLen),
			SizeBytes:   fr.SizeBytes,
			CreatedAt:   now,
		})
	}
	return files
}

func encodeSection(v any, present bool) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func encodeFinancialConfig(quoteID uuid.UUID, fc *transport.FinancialConfig) (*repository.FinancialConfig, error) {
	if fc == nil {
		return nil, nil
	}
	out := &repository.FinancialConfig{QuoteID: quoteID}
	var err error
	if out.VAT, err = encodeSection(fc.VAT, fc.VAT != nil); err != nil {
		return nil, fmt.Errorf("encode vat settings: %w", err)
	}
	if out.Advance, err = encodeSection(fc.Advance, fc.Advance != nil); err != nil {
		return nil, fmt.Errorf("encode advance settings: %w", err)
	}
	if out.Discount, err = encodeSection(fc.Discount, fc.Discount != nil); err != nil {
		return nil, fmt.Errorf("encode discount settings: %w", err)
	}
	if out.PaymentTerms, err = encodeSection(fc.PaymentTerms, fc.PaymentTerms != nil); err != nil {
		return nil, fmt.Errorf("encode payment terms: %w", err)
	}
	if out.MarketingBanner, err = encodeSection(fc.MarketingBanner, fc.MarketingBanner != nil); err != nil {
		return nil, fmt.Errorf("encode marketing banner: %w", err)
	}
	return out, nil
}

func decodeSection[T any](raw []byte) *T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func decodeFinancialConfig(fc *repository.FinancialConfig) *transport.FinancialConfig {
	if fc == nil {
		return nil
	}
	return &transport.FinancialConfig{
		VAT:             decodeSection[transport.VATSettings](fc.VAT),
		Advance:         decodeSection[transport.AdvanceSettings](fc.Advance),
		Discount:        decodeSection[transport.DiscountSettings](fc.Discount),
		PaymentTerms:    decodeSection[transport.PaymentTermsSettings](fc.PaymentTerms),
		MarketingBanner: decodeSection[transport.MarketingBannerSettings](fc.MarketingBanner),
	}
}

// ── Models → responses ───────────────────────────────────────────────────────

func toQuoteResponse(q *repository.Quote) transport.QuoteResponse {
	resp := transport.QuoteResponse{
		ID:             q.ID,
		UserID:         q.UserID,
		ClientID:       q.ClientID,
		LeadID:         q.LeadID,
		ProfileID:      q.ProfileID,
		QuoteNumber:    q.QuoteNumber,
		Title:          q.Title,
		Description:    q.Description,
		Status:         transport.QuoteStatus(q.Status),
		ShareToken:     q.ShareToken,
		IsPublic:       q.IsPublic,
		TotalAmount:    q.TotalAmount,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		FinalAmount:    q.FinalAmount,
		ValidUntil:     q.ValidUntil,
		Notes:          q.Notes,
		SentAt:         q.SentAt,
		Tasks:          make([]transport.TaskResponse, 0),
		Files:          make([]transport.FileResponse, 0),
		FollowUps:      make([]transport.FollowUpResponse, 0),
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	if q.NetAmount.Valid {
		resp.NetAmount = toPtr(q.NetAmount.Decimal)
	}
	return resp
}

func toTaskResponses(tasks []repository.Task) []transport.TaskResponse {
	out := make([]transport.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		materials := make([]transport.MaterialResponse, 0, len(t.Materials))
		for _, m := range t.Materials {
			materials = append(materials, transport.MaterialResponse{
				ID:        m.ID,
				Name:      m.Name,
				Quantity:  m.Quantity,
				Unit:      m.Unit,
				UnitPrice: m.UnitPrice,
			})
		}
		out = append(out, transport.TaskResponse{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			Quantity:       t.Quantity,
			Unit:           t.Unit,
			UnitPrice:      t.UnitPrice,
			Duration:       t.Duration,
			DurationUnit:   t.DurationUnit,
			Category:       t.Category,
			CustomCategory: t.CustomCategory,
			SortOrder:      t.SortOrder,
			Materials:      materials,
		})
	}
	return out
}

func toFileResponses(files []repository.File) []transport.FileResponse {
	out := make([]transport.FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, transport.FileResponse{
			ID:          f.ID,
			Category:    f.Category,
			FileName:    f.FileName,
			FileKey:     f.FileKey,
			ContentType: f.ContentType,
			SizeBytes:   f.SizeBytes,
			CreatedAt:   f.CreatedAt,
		})
	}
	return out
}

func toFollowUpResponses(items []repository.FollowUp) []transport.FollowUpResponse {
	out := make([]transport.FollowUpResponse, 0, len(items))
	for _, f := range items {
		var meta map[string]any
		if len(f.Meta) > 0 {
			_ = json.Unmarshal(f.Meta, &meta)
		}
		out = append(out, transport.FollowUpResponse{
			ID:          f.ID,
			Status:      transport.FollowUpStatus(f.Status),
			ScheduledAt: f.ScheduledAt,
			Meta:        meta,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	return out
}

func toClientSummary(c *repository.Client) *transport.ClientSummary {
	if c == nil {
		return nil
	}
	return &transport.ClientSummary{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func toProfileSummary(p *repository.CompanyProfile) *transport.CompanyProfileSummary {
	if p == nil {
		return nil
	}
	return &transport.CompanyProfileSummary{ID: p.ID, CompanyName: p.CompanyName, Email: p.Email, Phone: p.Phone}
}

func toEventResponses(events []repository.QuoteEvent) []transport.QuoteEventResponse {
	out := make([]transport.QuoteEventResponse, 0, len(events))
	for _, e := range events {
		meta := map[string]any{}
		if len(e.Meta) > 0 {
			_ = json.Unmarshal(e.Meta, &meta)
		}
		out = append(out, transport.QuoteEventResponse{ID: e.ID, Type: e.Type, Meta: meta, CreatedAt: e.CreatedAt})
	}
	return out
}
