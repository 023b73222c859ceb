package inventory

import (
	"context"
	"time"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/authz"
	"github.com/erazemk/arsenal/internal/ledger"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
	"github.com/erazemk/arsenal/internal/workflow"
)

// scope applies the actor's mandatory restriction and checks the filter.
func scope(actor model.Actor, f model.Filter) (model.Filter, error) {
	f, err := authz.Scope(actor, f)
	if err != nil {
		return model.Filter{}, err
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.StartDate.After(f.EndDate) {
		return model.Filter{}, apperr.Validation("start_date %s is after end_date %s", f.StartDate, f.EndDate)
	}
	if f.Status != "" && !workflow.ValidStatus(f.Status) {
		return model.Filter{}, apperr.Validation("unknown transfer status %q", f.Status)
	}
	return f, nil
}

// QueryMetrics returns the balance table for the actor's view of f, with a
// totals row. Balances are recomputed from the ledger on every call.
func (s *Service) QueryMetrics(ctx context.Context, actor model.Actor, f model.Filter) (metrics *model.Metrics, err error) {
	defer s.observe(ctx, "query_metrics", time.Now(), &err)

	f, err = scope(actor, f)
	if err != nil {
		return nil, err
	}

	movements, err := store.ListMovements(ctx, s.db, f)
	if err != nil {
		return nil, apperr.Wrap("loading movements", err)
	}
	buckets := ledger.Aggregate(movements, f)

	if err := s.label(ctx, buckets); err != nil {
		return nil, err
	}

	return &model.Metrics{Buckets: buckets, Totals: ledger.Totals(buckets)}, nil
}

// label fills in catalog names for display.
func (s *Service) label(ctx context.Context, buckets []model.BalanceBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	cat := catalogOf(s.db)

	bases, err := cat.ListBases(ctx)
	if err != nil {
		return apperr.Wrap("loading bases", err)
	}
	baseNames := make(map[int64]string, len(bases))
	for _, b := range bases {
		baseNames[b.ID] = b.Name
	}

	types, err := cat.ListEquipmentTypes(ctx)
	if err != nil {
		return apperr.Wrap("loading equipment types", err)
	}
	byID := make(map[int64]model.EquipmentType, len(types))
	for _, et := range types {
		byID[et.ID] = et
	}

	for i := range buckets {
		buckets[i].BaseName = baseNames[buckets[i].BaseID]
		et := byID[buckets[i].EquipmentTypeID]
		buckets[i].EquipmentName = et.Name
		buckets[i].Category = et.Category
	}
	return nil
}

// QueryList returns the records of the given kind visible to actor.
func (s *Service) QueryList(ctx context.Context, actor model.Actor, kind string, f model.Filter) (any, error) {
	switch kind {
	case model.KindPurchase:
		return s.ListPurchases(ctx, actor, f)
	case model.KindTransfer:
		return s.ListTransfers(ctx, actor, f)
	case model.KindAssignment:
		return s.ListAssignments(ctx, actor, f)
	case model.KindExpenditure:
		return s.ListExpenditures(ctx, actor, f)
	}
	return nil, apperr.Validation("unknown record kind %q", kind)
}

// ListPurchases returns purchases visible to actor, newest first.
func (s *Service) ListPurchases(ctx context.Context, actor model.Actor, f model.Filter) (list []model.Purchase, err error) {
	defer s.observe(ctx, "list_purchases", time.Now(), &err)
	if f, err = scope(actor, f); err != nil {
		return nil, err
	}
	list, err = store.ListPurchases(ctx, s.db, f)
	if err != nil {
		return nil, apperr.Wrap("listing purchases", err)
	}
	if list == nil {
		list = []model.Purchase{}
	}
	return list, nil
}

// ListTransfers returns transfers visible to actor, newest first. A base
// commander sees transfers with their base at either end.
func (s *Service) ListTransfers(ctx context.Context, actor model.Actor, f model.Filter) (list []model.Transfer, err error) {
	defer s.observe(ctx, "list_transfers", time.Now(), &err)
	if f, err = scope(actor, f); err != nil {
		return nil, err
	}
	list, err = store.ListTransfers(ctx, s.db, f)
	if err != nil {
		return nil, apperr.Wrap("listing transfers", err)
	}
	if list == nil {
		list = []model.Transfer{}
	}
	return list, nil
}

// ListAssignments returns assignments visible to actor, newest first.
func (s *Service) ListAssignments(ctx context.Context, actor model.Actor, f model.Filter) (list []model.Assignment, err error) {
	defer s.observe(ctx, "list_assignments", time.Now(), &err)
	if f, err = scope(actor, f); err != nil {
		return nil, err
	}
	list, err = store.ListAssignments(ctx, s.db, f)
	if err != nil {
		return nil, apperr.Wrap("listing assignments", err)
	}
	if list == nil {
		list = []model.Assignment{}
	}
	return list, nil
}

// ListExpenditures returns expenditures visible to actor, newest first.
func (s *Service) ListExpenditures(ctx context.Context, actor model.Actor, f model.Filter) (list []model.Expenditure, err error) {
	defer s.observe(ctx, "list_expenditures", time.Now(), &err)
	if f, err = scope(actor, f); err != nil {
		return nil, err
	}
	list, err = store.ListExpenditures(ctx, s.db, f)
	if err != nil {
		return nil, apperr.Wrap("listing expenditures", err)
	}
	if list == nil {
		list = []model.Expenditure{}
	}
	return list, nil
}
