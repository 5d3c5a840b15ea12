package audit

import (
	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// VisibleLocations admin → todas; resto → intersección de asignadas con existentes.
// IDs asignados que ya no existen se descartan en silencio.
func VisibleLocations(role string, assignedIDs []string, all []entity.Location) []entity.Location {
	if role == entity.RoleAdmin {
		return append([]entity.Location(nil), all...)
	}
	assigned := toSet(assignedIDs)
	out := make([]entity.Location, 0, len(assigned))
	for _, loc := range all {
		if _, ok := assigned[loc.ID]; ok {
			out = append(out, loc)
		}
	}
	return out
}

// VisibleRecords admin → todos; resto → registros cuya ubicación está en assignedNames.
func VisibleRecords(role string, assignedNames []string, items []entity.AuditItem) []entity.AuditItem {
	if role == entity.RoleAdmin {
		return append([]entity.AuditItem(nil), items...)
	}
	allowed := toSet(assignedNames)
	out := make([]entity.AuditItem, 0)
	for _, it := range items {
		if _, ok := allowed[it.Location]; ok {
			out = append(out, it)
		}
	}
	return out
}

// CanAccessLocation indica si el rol puede operar sobre la ubicación (por nombre).
func CanAccessLocation(role string, assignedNames []string, location string) bool {
	if role == entity.RoleAdmin {
		return true
	}
	for _, n := range assignedNames {
		if n == location {
			return true
		}
	}
	return false
}

// LocationNames devuelve los nombres de las ubicaciones dadas.
func LocationNames(locs []entity.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Name)
	}
	return out
}

// EnsureLocationDeletable devuelve ErrConflict si algún registro referencia la ubicación por nombre.
func EnsureLocationDeletable(name string, items []entity.AuditItem) error {
	for _, it := range items {
		if it.Location == name {
			return domain.ErrConflict
		}
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
