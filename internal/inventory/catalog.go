package inventory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/authz"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
	"github.com/erazemk/arsenal/internal/validate"
)

// ListBases returns every base.
func (s *Service) ListBases(ctx context.Context, actor model.Actor) ([]model.Base, error) {
	if !authz.CanRead(actor) {
		return nil, apperr.Unauthorized("role %q may not query", actor.Role)
	}
	bases, err := catalogOf(s.db).ListBases(ctx)
	if err != nil {
		return nil, apperr.Wrap("listing bases", err)
	}
	if bases == nil {
		bases = []model.Base{}
	}
	return bases, nil
}

// ListEquipmentTypes returns every equipment type.
func (s *Service) ListEquipmentTypes(ctx context.Context, actor model.Actor) ([]model.EquipmentType, error) {
	if !authz.CanRead(actor) {
		return nil, apperr.Unauthorized("role %q may not query", actor.Role)
	}
	types, err := catalogOf(s.db).ListEquipmentTypes(ctx)
	if err != nil {
		return nil, apperr.Wrap("listing equipment types", err)
	}
	if types == nil {
		types = []model.EquipmentType{}
	}
	return types, nil
}

// CreateBase adds a base. Admin only.
func (s *Service) CreateBase(ctx context.Context, actor model.Actor, name string) (*model.Base, error) {
	if !authz.CanManageCatalog(actor) {
		return nil, apperr.Unauthorized("only admins may add bases")
	}
	name = strings.TrimSpace(name)
	if err := validate.Text("name", name); err != nil {
		return nil, err
	}

	b, err := store.CreateBase(ctx, s.db, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("base %q already exists", name)
		}
		return nil, apperr.Wrap("creating base", err)
	}

	slog.Info("base created", "user", actor.Username, "base", b.Name)
	return b, nil
}

// CreateEquipmentType adds an equipment type. Admin only.
func (s *Service) CreateEquipmentType(ctx context.Context, actor model.Actor, name, category string) (*model.EquipmentType, error) {
	if !authz.CanManageCatalog(actor) {
		return nil, apperr.Unauthorized("only admins may add equipment types")
	}
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if err := validate.Text("name", name); err != nil {
		return nil, err
	}
	if err := validate.Text("category", category); err != nil {
		return nil, err
	}

	et, err := store.CreateEquipmentType(ctx, s.db, name, category)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Validation("equipment type %q already exists", name)
		}
		return nil, apperr.Wrap("creating equipment type", err)
	}

	slog.Info("equipment type created", "user", actor.Username, "equipment_type", et.Name, "category", et.Category)
	return et, nil
}

// SetEquipmentTypeImage stores an already normalized photo. Admin only.
func (s *Service) SetEquipmentTypeImage(ctx context.Context, actor model.Actor, id int64, image []byte, mime string) error {
	if !authz.CanManageCatalog(actor) {
		return apperr.Unauthorized("only admins may change equipment images")
	}
	ok, err := store.SetEquipmentTypeImage(ctx, s.db, id, image, mime)
	if err != nil {
		return apperr.Wrap("saving image", err)
	}
	if !ok {
		return apperr.NotFound("equipment type %d not found", id)
	}
	return nil
}

// EquipmentTypeImage returns an equipment type's photo.
func (s *Service) EquipmentTypeImage(ctx context.Context, actor model.Actor, id int64) ([]byte, string, error) {
	if !authz.CanRead(actor) {
		return nil, "", apperr.Unauthorized("role %q may not query", actor.Role)
	}
	data, mime, err := store.GetEquipmentTypeImage(ctx, s.db, id)
	if err != nil {
		return nil, "", apperr.Wrap("loading image", err)
	}
	if data == nil {
		return nil, "", apperr.NotFound("equipment type %d has no image", id)
	}
	return data, mime, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
