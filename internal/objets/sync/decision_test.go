package sync

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"patrimoine_backend/internal/objets/repository"
)

func catalogueRow() Row {
	return Row{
		Ref:   "PM51001253",
		Tico:  "Statue : Saint Jean-Baptiste",
		Prot:  "classé au titre objet",
		Scle:  "limite 15e siècle 16e siècle",
		Cate:  FlexStrings{"bois", "taillé"},
		Deno:  FlexStrings{"statue"},
		Com:   "Aubilly",
		Insee: "51019",
		Dpt:   "51",
		Edif:  "église Saint-Pierre",
		Refa:  "PA00078599",
		Empl:  "nef",
	}
}

func persistedFromRow(row Row) *repository.Objet {
	attrs := mapAttrs(row)
	return &repository.Objet{
		ID:               uuid.New(),
		PalissyRef:       row.Ref,
		Nom:              attrs.Nom,
		Categorie:        attrs.Categorie,
		Protection:       attrs.Protection,
		CraftedAt:        attrs.CraftedAt,
		Materiaux:        attrs.Materiaux,
		CommuneNom:       attrs.CommuneNom,
		CommuneCodeInsee: attrs.CommuneCodeInsee,
		DepartementCode:  attrs.DepartementCode,
		EdificeNom:       attrs.EdificeNom,
		Emplacement:      attrs.Emplacement,
		Photos:           attrs.Photos,
	}
}

func TestDecideCreate(t *testing.T) {
	row := catalogueRow()
	d := Decide(row, Context{CommuneExists: true})

	if d.Action != ActionCreate {
		t.Fatalf("action = %s, want %s", d.Action, ActionCreate)
	}
	if d.Attrs.Nom != "Statue : Saint Jean-Baptiste" {
		t.Errorf("nom = %q", d.Attrs.Nom)
	}
	if d.Attrs.CommuneCodeInsee == nil || *d.Attrs.CommuneCodeInsee != "51019" {
		t.Errorf("commune code = %v, want 51019", d.Attrs.CommuneCodeInsee)
	}
	if d.Edifice.Create == nil {
		t.Fatal("expected new edifice attrs")
	}
	if d.Edifice.Create.Slug != "eglise-saint-pierre" {
		t.Errorf("edifice slug = %q", d.Edifice.Create.Slug)
	}
	if d.Edifice.Create.MerimeeRef == nil || *d.Edifice.Create.MerimeeRef != "PA00078599" {
		t.Errorf("edifice ref = %v, want PA00078599", d.Edifice.Create.MerimeeRef)
	}
}

func TestDecideCreateRejections(t *testing.T) {
	t.Run("out of scope protection is skipped", func(t *testing.T) {
		row := catalogueRow()
		row.Prot = "déclassé au titre objet"
		d := Decide(row, Context{CommuneExists: true})
		if d.Action != ActionIgnoredOutOfScope {
			t.Errorf("action = %s, want %s", d.Action, ActionIgnoredOutOfScope)
		}
	})
	t.Run("missing title", func(t *testing.T) {
		row := catalogueRow()
		row.Tico = "  "
		d := Decide(row, Context{CommuneExists: true})
		if d.Action != ActionCreateRejectedInvalid {
			t.Errorf("action = %s, want %s", d.Action, ActionCreateRejectedInvalid)
		}
	})
	t.Run("unknown commune", func(t *testing.T) {
		d := Decide(catalogueRow(), Context{CommuneExists: false})
		if d.Action != ActionCreateRejectedInvalid {
			t.Errorf("action = %s, want %s", d.Action, ActionCreateRejectedInvalid)
		}
	})
}

func TestDecideNotChanged(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)

	d := Decide(row, Context{Persisted: persisted, CommuneExists: true})
	if d.Action != ActionNotChanged {
		t.Fatalf("action = %s, want %s", d.Action, ActionNotChanged)
	}
	if d.Action.Mutates() {
		t.Error("not_changed must not mutate")
	}
}

func TestDecidePlainUpdate(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Empl = "choeur"

	d := Decide(row, Context{Persisted: persisted, CommuneExists: true})
	if d.Action != ActionUpdate {
		t.Fatalf("action = %s, want %s", d.Action, ActionUpdate)
	}
	if d.Attrs.Emplacement == nil || *d.Attrs.Emplacement != "choeur" {
		t.Errorf("emplacement = %v, want choeur", d.Attrs.Emplacement)
	}
	if d.CascadeDeleteRecensements {
		t.Error("plain update must not cascade")
	}
}

func TestDecideCommuneChangeApplied(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Com = "Reims"
	row.Insee = "51454"

	d := Decide(row, Context{Persisted: persisted, RecensementCount: 0, CommuneExists: true})
	if d.Action != ActionUpdateWithCommuneChange {
		t.Fatalf("action = %s, want %s", d.Action, ActionUpdateWithCommuneChange)
	}
	if d.Attrs.CommuneCodeInsee == nil || *d.Attrs.CommuneCodeInsee != "51454" {
		t.Errorf("commune code = %v, want 51454", d.Attrs.CommuneCodeInsee)
	}
	if !d.CascadeDeleteRecensements {
		t.Error("applied commune change must cascade recensement cleanup")
	}
	if !strings.Contains(d.Log, "51019 -> 51454") {
		t.Errorf("log %q does not name the change", d.Log)
	}
}

func TestDecideCommuneChangeIgnored(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Com = "Reims"
	row.Insee = "51454"
	row.Empl = "choeur"
	row.Tico = "Statue : Saint Jean-Baptiste restaurée"

	for _, count := range []int{1, 3} {
		d := Decide(row, Context{Persisted: persisted, RecensementCount: count, CommuneExists: true})
		if d.Action != ActionUpdateIgnoringCommuneChange {
			t.Fatalf("count %d: action = %s, want %s", count, d.Action, ActionUpdateIgnoringCommuneChange)
		}
		// Location keeps the locally recorded values, emplacement
		// included: a relocated notice also relocates its spot.
		if *d.Attrs.CommuneCodeInsee != "51019" {
			t.Errorf("commune code = %s, want persisted 51019", *d.Attrs.CommuneCodeInsee)
		}
		if *d.Attrs.CommuneNom != "Aubilly" {
			t.Errorf("commune nom = %s, want persisted Aubilly", *d.Attrs.CommuneNom)
		}
		if *d.Attrs.Emplacement != "nef" {
			t.Errorf("emplacement = %s, want persisted nef", *d.Attrs.Emplacement)
		}
		// Non-location fields are still refreshed.
		if d.Attrs.Nom != "Statue : Saint Jean-Baptiste restaurée" {
			t.Errorf("nom = %q not refreshed", d.Attrs.Nom)
		}
		if d.CascadeDeleteRecensements {
			t.Error("ignored commune change must not cascade")
		}
	}
}

// A soft-deleted recensement still counts as existing fieldwork, so the
// relocation stays blocked with the same row.
func TestDecideSoftDeletedRecensementBlocksCommuneChange(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Insee = "51454"

	d := Decide(row, Context{Persisted: persisted, RecensementCount: 1, CommuneExists: true})
	if d.Action != ActionUpdateIgnoringCommuneChange {
		t.Fatalf("action = %s, want %s", d.Action, ActionUpdateIgnoringCommuneChange)
	}
}

func TestDecideCommuneChangeIgnoredWithNoOtherEdit(t *testing.T) {
	row := catalogueRow()
	persisted := persistedFromRow(row)
	row.Insee = "51454"
	row.Com = "Reims"

	d := Decide(row, Context{Persisted: persisted, RecensementCount: 1, CommuneExists: true})
	// The ignored tag sticks even when masking the location leaves no
	// other field to write.
	if d.Action != ActionUpdateIgnoringCommuneChange {
		t.Fatalf("action = %s, want %s", d.Action, ActionUpdateIgnoringCommuneChange)
	}
	if *d.Attrs.CommuneCodeInsee != "51019" {
		t.Errorf("commune code = %s, want persisted 51019", *d.Attrs.CommuneCodeInsee)
	}
}

func TestDecideUpdateRejections(t *testing.T) {
	t.Run("invalid mapped record", func(t *testing.T) {
		row := catalogueRow()
		persisted := persistedFromRow(row)
		row.Tico = ""
		d := Decide(row, Context{Persisted: persisted, CommuneExists: true})
		if d.Action != ActionUpdateRejectedInvalid {
			t.Errorf("action = %s, want %s", d.Action, ActionUpdateRejectedInvalid)
		}
	})
	t.Run("out of scope", func(t *testing.T) {
		row := catalogueRow()
		persisted := persistedFromRow(row)
		row.Prot = "sans protection"
		d := Decide(row, Context{Persisted: persisted, CommuneExists: true})
		if d.Action != ActionUpdateRejectedInvalid {
			t.Errorf("action = %s, want %s", d.Action, ActionUpdateRejectedInvalid)
		}
	})
}

func TestResolveEdifice(t *testing.T) {
	row := catalogueRow()
	sameCommune := &repository.Edifice{ID: uuid.New(), CodeInsee: "51019"}
	otherCommune := &repository.Edifice{ID: uuid.New(), CodeInsee: "99999"}
	bySlug := &repository.Edifice{ID: uuid.New(), CodeInsee: "51019", Slug: "eglise-saint-pierre"}

	t.Run("reuse by catalogue ref in same commune", func(t *testing.T) {
		res := resolveEdifice(row, Context{EdificeByRef: sameCommune})
		if res.ExistingID == nil || *res.ExistingID != sameCommune.ID {
			t.Errorf("resolution = %+v, want existing %s", res, sameCommune.ID)
		}
	})
	t.Run("reuse by slug and commune", func(t *testing.T) {
		res := resolveEdifice(row, Context{EdificeBySlug: bySlug})
		if res.ExistingID == nil || *res.ExistingID != bySlug.ID {
			t.Errorf("resolution = %+v, want existing %s", res, bySlug.ID)
		}
	})
	t.Run("ref match in another commune creates without ref", func(t *testing.T) {
		res := resolveEdifice(row, Context{EdificeByRef: otherCommune})
		if res.Create == nil {
			t.Fatal("expected new edifice attrs")
		}
		if res.Create.MerimeeRef != nil {
			t.Errorf("merimee ref = %v, want nil to avoid a uniqueness conflict", res.Create.MerimeeRef)
		}
		if res.Create.CodeInsee != "51019" {
			t.Errorf("code insee = %s, want 51019", res.Create.CodeInsee)
		}
	})
	t.Run("no match creates with ref", func(t *testing.T) {
		res := resolveEdifice(row, Context{})
		if res.Create == nil {
			t.Fatal("expected new edifice attrs")
		}
		if res.Create.MerimeeRef == nil || *res.Create.MerimeeRef != "PA00078599" {
			t.Errorf("merimee ref = %v, want PA00078599", res.Create.MerimeeRef)
		}
	})
	t.Run("no insee yields empty resolution", func(t *testing.T) {
		bare := row
		bare.Insee = ""
		res := resolveEdifice(bare, Context{})
		if res.ExistingID != nil || res.Create != nil {
			t.Errorf("resolution = %+v, want empty", res)
		}
	})
}
