package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// ScanState estados de una transacción de escaneo.
type ScanState string

const (
	ScanAwaitingLocation ScanState = "awaiting_location"
	ScanReady            ScanState = "ready"
	ScanResolving        ScanState = "resolving"
	ScanCommitting       ScanState = "committing"
	ScanSuccess          ScanState = "success"
	ScanRejected         ScanState = "rejected"
)

// ScanInput entrada común a cámara, lector de código de barras y captura manual.
type ScanInput struct {
	Code       string
	LocationID string
}

// ScanOutcome resultado observable de un escaneo. En rechazo Err contiene el error de dominio.
type ScanOutcome struct {
	State            ScanState
	Trace            []ScanState
	SelectedLocation string
	Corrected        bool
	Warning          string
	Item             entity.AuditItem // registro resultante (Success)
	Before           int
	After            int
	Err              error
}

func (o *ScanOutcome) enter(s ScanState) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

func (o *ScanOutcome) reject(err error) (*ScanOutcome, error) {
	o.enter(ScanRejected)
	o.Err = err
	return o, err
}

// Mensajes de advertencia por corrección de ubicación.
const (
	WarnAdminOverride     = "ubicación corregida por administrador"
	WarnLocationCorrected = "ubicación corregida"
)

// ScanProcessor ejecuta la transacción escaneo → actualización persistida:
// resolución de ubicación, política de discrepancia de ubicación, incremento,
// recálculo de estado, persistencia y resultado.
type ScanProcessor struct {
	store   *Store
	dir     locationDirectory
	locker  Locker
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewScanProcessor construye el procesador. locker nil usa LocalLocker.
func NewScanProcessor(store *Store, locations repository.LocationRepository, locker Locker, metrics Metrics, log *logger.Logger) *ScanProcessor {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ScanProcessor{
		store:   store,
		dir:     locationDirectory{repo: locations},
		locker:  locker,
		metrics: metrics,
		log:     log.Component("scan"),
		now:     time.Now,
	}
}

// Process procesa un escaneo. Siempre devuelve el outcome (con la traza de estados);
// err es no nil cuando el escaneo terminó en Rejected. Un rechazo no modifica el snapshot.
func (p *ScanProcessor) Process(ctx context.Context, principal entity.Principal, in ScanInput) (*ScanOutcome, error) {
	out, err := p.process(ctx, principal, in)
	p.metrics.ScanCompleted(string(out.State))
	ev := p.log.Info()
	if err != nil {
		ev = p.log.Warn().Err(err)
	}
	ev.Str("user_id", principal.UserID).
		Str("code", in.Code).
		Str("selected_location", out.SelectedLocation).
		Str("location", out.Item.Location).
		Str("state", string(out.State)).
		Bool("corrected", out.Corrected).
		Int("before", out.Before).
		Int("after", out.After).
		Msg("escaneo procesado")
	return out, err
}

func (p *ScanProcessor) process(ctx context.Context, principal entity.Principal, in ScanInput) (*ScanOutcome, error) {
	out := &ScanOutcome{}
	out.enter(ScanAwaitingLocation)
	if strings.TrimSpace(in.LocationID) == "" {
		return out.reject(domain.ErrLocationRequired)
	}

	out.enter(ScanReady)
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return out.reject(domain.NewValidationError("código vacío"))
	}

	out.enter(ScanResolving)
	selected, err := p.dir.resolve(ctx, in.LocationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return out.reject(fmt.Errorf("ubicación %q: %w", in.LocationID, domain.ErrNotFound))
		}
		return out.reject(err)
	}
	out.SelectedLocation = selected.Name

	candidates := p.store.Snapshot().FindByCode(code)
	if len(candidates) == 0 {
		return out.reject(fmt.Errorf("artículo %q: %w", code, domain.ErrNotFound))
	}

	var assigned []string
	if !principal.IsAdmin() {
		if _, assigned, err = p.dir.visible(ctx, principal); err != nil {
			return out.reject(err)
		}
	}
	target, err := pickTarget(principal, assigned, selected.Name, candidates)
	if err != nil {
		return out.reject(err)
	}
	if target.Location != selected.Name {
		out.Corrected = true
		if principal.IsAdmin() {
			out.Warning = WarnAdminOverride + ": " + target.Location
		} else {
			out.Warning = WarnLocationCorrected + ": " + target.Location
		}
	}

	out.enter(ScanCommitting)
	key := target.Key()
	unlock, err := p.locker.Lock(ctx, key)
	if err != nil {
		return out.reject(lockError(key, err))
	}
	defer unlock()

	current, found, err := p.store.Fetch(ctx, key)
	if err != nil {
		return out.reject(err)
	}
	if !found {
		return out.reject(fmt.Errorf("artículo %q: %w", code, domain.ErrNotFound))
	}

	updated := current.Clone()
	if current.PhysicalQuantity != nil {
		out.Before = *current.PhysicalQuantity
	}
	out.After = out.Before + 1
	now := p.now()
	updated.PhysicalQuantity = entity.IntPtr(out.After)
	updated.LastAuditedAt = &now
	updated.AuditedBy = principal.UserID
	updated.UpdatedAt = now
	domainaudit.Restamp(&updated)

	if err := p.store.Upsert(ctx, []entity.AuditItem{updated}); err != nil {
		return out.reject(err)
	}
	out.Item = updated
	out.enter(ScanSuccess)
	return out, nil
}

// pickTarget elige el registro a incrementar entre los que coinciden con el código:
// el de la ubicación seleccionada si existe; si no, admin toma el primero (orden por ubicación)
// y el resto toma el primero dentro de sus ubicaciones asignadas o recibe acceso denegado.
func pickTarget(principal entity.Principal, assigned []string, selected string, candidates []entity.AuditItem) (entity.AuditItem, error) {
	for _, c := range candidates {
		if c.Location == selected {
			if !principal.IsAdmin() && !domainaudit.CanAccessLocation(principal.Role, assigned, c.Location) {
				return entity.AuditItem{}, domain.ErrAccessDenied
			}
			return c, nil
		}
	}
	if principal.IsAdmin() {
		return candidates[0], nil
	}
	for _, c := range candidates {
		if domainaudit.CanAccessLocation(principal.Role, assigned, c.Location) {
			return c, nil
		}
	}
	return entity.AuditItem{}, domain.ErrAccessDenied
}
