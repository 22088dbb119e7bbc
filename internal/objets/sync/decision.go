package sync

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"patrimoine_backend/internal/objets/domain"
	"patrimoine_backend/internal/objets/repository"
)

// Action tags the outcome of reconciling one row. Callers use it for
// batch counters only, never for control flow.
type Action string

const (
	ActionCreate                      Action = "create"
	ActionUpdate                      Action = "update"
	ActionUpdateWithCommuneChange     Action = "update_with_commune_change"
	ActionUpdateIgnoringCommuneChange Action = "update_ignoring_commune_change"
	ActionNotChanged                  Action = "not_changed"
	ActionUpdateRejectedInvalid       Action = "update_rejected_invalid"
	ActionCreateRejectedInvalid       Action = "create_rejected_invalid"
	ActionIgnoredOutOfScope           Action = "ignored_out_of_scope"
)

// Mutates reports whether the action writes anything.
func (a Action) Mutates() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionUpdateWithCommuneChange, ActionUpdateIgnoringCommuneChange:
		return true
	}
	return false
}

// EdificeResolution says which edifice the objet should point at: an
// existing row, a new one to create, or none at all.
type EdificeResolution struct {
	ExistingID *uuid.UUID
	Create     *repository.EdificeAttrs
}

// Context carries everything Decide needs from the store, pre-fetched so
// the decision itself stays pure.
type Context struct {
	// Persisted is the objet matched by REF, nil on the create path.
	Persisted *repository.Objet
	// RecensementCount counts every recensement of the persisted objet,
	// soft-deleted ones included: local fieldwork blocks relocation even
	// when it has been withdrawn.
	RecensementCount int
	// EdificeByRef is the edifice matched on the row's REFA, if any.
	EdificeByRef *repository.Edifice
	// EdificeBySlug is the edifice matched on (slug of EDIF, INSEE), if any.
	EdificeBySlug *repository.Edifice
	// CommuneExists reports whether the row's INSEE matches a known commune.
	CommuneExists bool
}

// Decision is the reconciliation outcome for one row.
type Decision struct {
	Action  Action
	Ref     string
	Attrs   repository.Attrs
	Edifice EdificeResolution
	// CascadeDeleteRecensements asks the applier to soft-delete the
	// objet's recensements, whose dossier context the applied commune
	// change invalidated.
	CascadeDeleteRecensements bool
	Log                       string
}

// Decide computes the reconciliation outcome for one already-validated
// row. It performs no I/O.
func Decide(row Row, rc Context) Decision {
	if rc.Persisted == nil {
		return decideCreate(row, rc)
	}
	return decideUpdate(row, rc)
}

func decideCreate(row Row, rc Context) Decision {
	if row.OutOfScope() {
		return Decision{
			Action: ActionIgnoredOutOfScope,
			Ref:    row.Ref,
			Log:    fmt.Sprintf("ignored objet %s: protection %q is out of scope", row.Ref, row.Prot),
		}
	}

	attrs := mapAttrs(row)
	if msg := validateAttrs(attrs, rc, true); msg != "" {
		return Decision{
			Action: ActionCreateRejectedInvalid,
			Ref:    row.Ref,
			Log:    fmt.Sprintf("rejected creation of objet %s: %s", row.Ref, msg),
		}
	}

	return Decision{
		Action:  ActionCreate,
		Ref:     row.Ref,
		Attrs:   attrs,
		Edifice: resolveEdifice(row, rc),
		Log:     fmt.Sprintf("created objet %s in commune %s", row.Ref, row.CodeInsee()),
	}
}

func decideUpdate(row Row, rc Context) Decision {
	persisted := rc.Persisted

	if row.OutOfScope() {
		return Decision{
			Action: ActionUpdateRejectedInvalid,
			Ref:    row.Ref,
			Log:    fmt.Sprintf("rejected update of objet %s: protection %q is out of scope", row.Ref, row.Prot),
		}
	}

	attrs := mapAttrs(row)
	if msg := validateAttrs(attrs, rc, false); msg != "" {
		return Decision{
			Action: ActionUpdateRejectedInvalid,
			Ref:    row.Ref,
			Log:    fmt.Sprintf("rejected update of objet %s: %s", row.Ref, msg),
		}
	}

	communeBefore := deref(persisted.CommuneCodeInsee)
	communeAfter := row.CodeInsee()
	communeChanged := communeBefore != communeAfter
	applyChange := communeChanged && rc.RecensementCount == 0
	ignoreChange := communeChanged && !applyChange

	if ignoreChange {
		// Keep every location-identifying field as recorded locally.
		attrs.CommuneNom = persisted.CommuneNom
		attrs.CommuneCodeInsee = persisted.CommuneCodeInsee
		attrs.DepartementCode = persisted.DepartementCode
		attrs.EdificeNom = persisted.EdificeNom
		attrs.Emplacement = persisted.Emplacement
	}

	// A commune change always keeps its applied/ignored tag, even when
	// masking the location leaves nothing else to write.
	if !communeChanged && attrsEqual(attrs, persisted.Attrs()) {
		return Decision{
			Action: ActionNotChanged,
			Ref:    row.Ref,
			Log:    fmt.Sprintf("objet %s unchanged", row.Ref),
		}
	}

	var edifice EdificeResolution
	if ignoreChange {
		edifice = EdificeResolution{ExistingID: persisted.EdificeID}
	} else {
		edifice = resolveEdifice(row, rc)
	}

	var action Action
	var log string
	switch {
	case applyChange:
		action = ActionUpdateWithCommuneChange
		log = fmt.Sprintf("updated objet %s, commune change applied %s -> %s",
			row.Ref, orEmptyMarker(communeBefore), orEmptyMarker(communeAfter))
	case ignoreChange:
		action = ActionUpdateIgnoringCommuneChange
		log = fmt.Sprintf("updated objet %s, commune change ignored %s -> %s: objet already has a recensement",
			row.Ref, orEmptyMarker(communeBefore), orEmptyMarker(communeAfter))
	default:
		action = ActionUpdate
		log = fmt.Sprintf("updated objet %s", row.Ref)
	}

	return Decision{
		Action:                    action,
		Ref:                       row.Ref,
		Attrs:                     attrs,
		Edifice:                   edifice,
		CascadeDeleteRecensements: applyChange,
		Log:                       log,
	}
}

// resolveEdifice picks the edifice for the row's location. A row without
// INSEE yields an empty resolution, never an error.
func resolveEdifice(row Row, rc Context) EdificeResolution {
	insee := row.CodeInsee()
	if insee == "" {
		return EdificeResolution{}
	}
	if rc.EdificeByRef != nil && rc.EdificeByRef.CodeInsee == insee {
		return EdificeResolution{ExistingID: &rc.EdificeByRef.ID}
	}
	if rc.EdificeBySlug != nil {
		return EdificeResolution{ExistingID: &rc.EdificeBySlug.ID}
	}

	attrs := repository.EdificeAttrs{
		Nom:       row.Edif,
		Slug:      domain.SlugFor(row.Edif),
		CodeInsee: insee,
	}
	if refa := strings.TrimSpace(row.Refa); refa != "" && rc.EdificeByRef == nil {
		attrs.MerimeeRef = &refa
	}
	// A REFA match in another commune means the edifice moved or the
	// notice is wrong; create a fresh edifice without the reference to
	// avoid a uniqueness conflict.
	return EdificeResolution{Create: &attrs}
}

func mapAttrs(row Row) repository.Attrs {
	attrs := repository.Attrs{
		Nom:       strings.TrimSpace(row.Tico),
		Materiaux: []string(row.Cate),
		Photos:    []string(row.Photos),
	}
	attrs.Protection = optional(row.Prot)
	attrs.CraftedAt = optional(string(row.Scle))
	if len(row.Deno) > 0 {
		attrs.Categorie = optional(row.Deno[0])
	}
	attrs.CommuneNom = optional(row.Com)
	attrs.CommuneCodeInsee = optional(row.CodeInsee())
	attrs.DepartementCode = optional(row.Dpt)
	attrs.EdificeNom = optional(row.Edif)
	attrs.Emplacement = optional(row.Empl)
	return attrs
}

func validateAttrs(attrs repository.Attrs, rc Context, creating bool) string {
	if attrs.Nom == "" {
		return "missing TICO"
	}
	if creating {
		if attrs.CommuneCodeInsee == nil {
			return "missing INSEE"
		}
		if !rc.CommuneExists {
			return fmt.Sprintf("commune %s is unknown", *attrs.CommuneCodeInsee)
		}
	}
	return ""
}

func attrsEqual(a, b repository.Attrs) bool {
	return a.Nom == b.Nom &&
		ptrEqual(a.Categorie, b.Categorie) &&
		ptrEqual(a.Protection, b.Protection) &&
		ptrEqual(a.CraftedAt, b.CraftedAt) &&
		slices.Equal(a.Materiaux, b.Materiaux) &&
		ptrEqual(a.CommuneNom, b.CommuneNom) &&
		ptrEqual(a.CommuneCodeInsee, b.CommuneCodeInsee) &&
		ptrEqual(a.DepartementCode, b.DepartementCode) &&
		ptrEqual(a.EdificeNom, b.EdificeNom) &&
		ptrEqual(a.Emplacement, b.Emplacement) &&
		slices.Equal(a.Photos, b.Photos)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmptyMarker(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
