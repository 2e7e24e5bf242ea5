package gormstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniqname/internal/config"
	"github.com/roach88/uniqname/internal/resolver"
)

func TestRegister_CreateResolvesPerScope(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	a := project{Name: "Foo", OrganizationID: org(1)}
	b := project{Name: "Foo", OrganizationID: org(1)}
	c := project{Name: "Foo", OrganizationID: org(2)}
	d := project{Name: "  Foo  ", OrganizationID: org(1)}
	for _, p := range []*project{&a, &b, &c, &d} {
		require.NoError(t, db.Create(p).Error)
	}

	assert.Equal(t, "Foo", a.Name)
	assert.Equal(t, "Foo (1)", b.Name)
	assert.Equal(t, "Foo", c.Name)
	assert.Equal(t, "Foo (2)", d.Name, "trimmed before resolution")

	var stored project
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, "Foo (1)", stored.Name)
}

func TestRegister_UpdateExcludesSelf(t *testing.T) {
	db := newTestDB(t)
	rec := &resolver.Recorder{}
	require.NoError(t, Register(db, &project{}, projectSettings(), WithTracer(rec)))

	var ps []*project
	for i := 0; i < 3; i++ {
		p := &project{Name: "Foo", OrganizationID: org(1)}
		require.NoError(t, db.Create(p).Error)
		ps = append(ps, p)
	}
	require.Equal(t, "Foo (2)", ps[2].Name)

	// Saving an unchanged name keeps it without resolving.
	rec.Reset()
	require.NoError(t, db.Save(ps[1]).Error)
	assert.Equal(t, "Foo (1)", ps[1].Name)
	assert.Empty(t, rec.Events)

	require.NoError(t, db.Model(ps[2]).Update("name", "Foo").Error)
	var stored project
	require.NoError(t, db.First(&stored, ps[2].ID).Error)
	assert.Equal(t, "Foo (2)", stored.Name, "its own suffix is free again")

	require.NoError(t, db.Model(ps[0]).Updates(map[string]interface{}{"name": "Foo"}).Error)
	require.NoError(t, db.First(&stored, ps[0].ID).Error)
	assert.Equal(t, "Foo", stored.Name, "own row never conflicts")
}

func TestRegister_UpdatesWithStruct(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	a := project{Name: "Foo", OrganizationID: org(1)}
	b := project{Name: "Bar", OrganizationID: org(1)}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	var stored project
	require.NoError(t, db.Model(&b).Updates(project{Name: "Baz"}).Error)
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, "Baz", stored.Name)
	assert.Equal(t, "Baz", b.Name)

	require.NoError(t, db.Model(&b).Updates(project{Name: "Foo"}).Error)
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, "Foo (1)", stored.Name, "scope comes from the stored row")
	assert.Equal(t, "Foo (1)", b.Name)

	// A zero Name is not written, so the name stays.
	require.NoError(t, db.Model(&b).Updates(project{OrganizationID: org(2)}).Error)
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, "Foo (1)", stored.Name)
	assert.Equal(t, uint(2), *stored.OrganizationID)
}

func TestRegister_UnchangedSaveKeepsDuplicates(t *testing.T) {
	db := newTestDB(t)
	rec := &resolver.Recorder{}
	require.NoError(t, Register(db, &project{}, projectSettings(), WithTracer(rec)))

	// Rows written before the callbacks existed may already collide.
	require.NoError(t, db.Exec(
		"INSERT INTO projects (name, organization_id) VALUES (?, ?), (?, ?)",
		"Foo", 1, "Foo", 1,
	).Error)

	var ps []project
	require.NoError(t, db.Order("id").Find(&ps).Error)
	require.Len(t, ps, 2)

	require.NoError(t, db.Save(&ps[1]).Error)
	assert.Empty(t, rec.Events)

	var stored project
	require.NoError(t, db.First(&stored, ps[1].ID).Error)
	assert.Equal(t, "Foo", stored.Name)

	ps[1].Name = "Foo"
	ps[1].OrganizationID = org(2)
	require.NoError(t, db.Save(&ps[1]).Error)
	assert.Empty(t, rec.Events, "a scope change alone does not rename")
}

func TestRegister_WhereTargetedUpdate(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	a := project{Name: "Foo", OrganizationID: org(1)}
	b := project{Name: "Bar", OrganizationID: org(1)}
	c := project{Name: "Qux", OrganizationID: org(2)}
	for _, p := range []*project{&a, &b, &c} {
		require.NoError(t, db.Create(p).Error)
	}

	var stored project
	require.NoError(t, db.Model(&project{}).Where("id = ?", b.ID).Update("name", "Foo").Error)
	require.NoError(t, db.First(&stored, b.ID).Error)
	assert.Equal(t, "Foo (1)", stored.Name, "checked in the row's own organization")

	require.NoError(t, db.Model(&project{}).Where("id = ?", a.ID).Update("name", " Foo ").Error)
	require.NoError(t, db.First(&stored, a.ID).Error)
	assert.Equal(t, "Foo", stored.Name, "the row does not conflict with itself")

	require.NoError(t, db.Model(&project{}).Where("id = ?", c.ID).Update("name", "Foo").Error)
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, "Foo", stored.Name)
}

func TestRegister_MultiRowUpdateRejected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	require.NoError(t, db.Create(&project{Name: "A", OrganizationID: org(1)}).Error)
	require.NoError(t, db.Create(&project{Name: "B", OrganizationID: org(1)}).Error)

	err := db.Model(&project{}).Where("organization_id = ?", 1).Update("name", "C").Error
	assert.ErrorIs(t, err, ErrMultiRowUpdate)

	var names []string
	require.NoError(t, db.Model(&project{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"A", "B"}, names)

	// Updates that leave the name alone may still touch many rows.
	require.NoError(t, db.Model(&project{}).Where("organization_id = ?", 1).Update("organization_id", 2).Error)
}

func TestRegister_UpdateWithoutUniqueFieldIsUntouched(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	p := project{Name: "Foo", OrganizationID: org(1)}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Model(&p).Updates(map[string]interface{}{"organization_id": 2}).Error)

	var stored project
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, "Foo", stored.Name)
	assert.Equal(t, uint(2), *stored.OrganizationID)
}

func TestRegister_WithTrashed(t *testing.T) {
	db := newTestDB(t)
	settings := projectSettings()
	settings.WithTrashed = true
	require.NoError(t, Register(db, &project{}, settings))

	old := project{Name: "Foo", OrganizationID: org(1)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Delete(&old).Error)

	p := project{Name: "Foo", OrganizationID: org(1)}
	require.NoError(t, db.Create(&p).Error)
	assert.Equal(t, "Foo (1)", p.Name)
}

func TestRegister_TrashedIgnoredByDefault(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	old := project{Name: "Foo", OrganizationID: org(1)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Delete(&old).Error)

	p := project{Name: "Foo", OrganizationID: org(1)}
	require.NoError(t, db.Create(&p).Error)
	assert.Equal(t, "Foo", p.Name)
}

func TestRegister_OtherTablesUnaffected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	a := tag{Label: "x"}
	b := tag{Label: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	assert.Equal(t, "x", b.Label)
}

func TestRegister_CustomFieldAndGenerator(t *testing.T) {
	db := newTestDB(t)
	settings := config.Default().For("tags")
	settings.UniqueField = "label"
	settings.Generator = &config.GeneratorConfig{Name: "attempt"}
	require.NoError(t, Register(db, &tag{}, settings))

	a := tag{Label: "x"}
	b := tag{Label: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	assert.Equal(t, "x-1", b.Label)
}

func TestRegister_GeneratorExhaustionFailsWrite(t *testing.T) {
	db := newTestDB(t)
	settings := config.Default().For("tags")
	settings.UniqueField = "label"
	settings.MaxAttempts = 2
	settings.Generator = &config.GeneratorConfig{Expr: "base + '-same'"}
	require.NoError(t, Register(db, &tag{}, settings))

	require.NoError(t, db.Create(&tag{Label: "x"}).Error)
	require.NoError(t, db.Create(&tag{Label: "x"}).Error)

	err := db.Create(&tag{Label: "x"}).Error
	require.Error(t, err)
	assert.True(t, resolver.IsGeneratorError(err))

	var count int64
	require.NoError(t, db.Model(&tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "no write after exhaustion")
}

func TestRegister_BatchCreateRejected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Register(db, &project{}, projectSettings()))

	err := db.Create(&[]project{{Name: "A"}, {Name: "B"}}).Error
	assert.ErrorIs(t, err, ErrBatchCreate)
}

func TestRegister_Errors(t *testing.T) {
	db := newTestDB(t)

	s := config.Default().For("tags")
	s.UniqueField = "rank"
	assert.ErrorContains(t, Register(db, &tag{}, s), "must be a string")

	s = config.Default().For("tags")
	s.UniqueField = "title"
	assert.Error(t, Register(db, &tag{}, s))

	s = projectSettings()
	s.ConstraintFields = []string{"team_id"}
	assert.Error(t, Register(db, &project{}, s))

	s = projectSettings()
	s.Generator = &config.GeneratorConfig{Expr: "base +"}
	assert.True(t, resolver.IsConfigError(Register(db, &project{}, s)))
}
