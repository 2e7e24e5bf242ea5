// Package gormstore applies uniqueness resolution to ordinary GORM models.
//
// Store implements resolver.Store over a model's table using the GORM query
// builder; models with a gorm.DeletedAt field get soft-delete semantics from
// GORM itself, and IncludeTrashed switches to Unscoped queries.
//
// Register installs create and update callbacks that rewrite the model's
// unique field before GORM writes it:
//
//	db.Create(&Project{Name: "Foo"})                      // Foo, then Foo (1), ...
//	db.Model(&p).Update("name", "Foo")                    // re-resolved, excluding p
//	db.Model(&p).Updates(Project{Name: "Foo"})            // same
//	db.Model(&Project{}).Where("id = ?", id).Update(...)  // same, row loaded by id
//	db.Save(&p)                                           // only if the name changed
//
// Updates resolve only when they write the unique field with a value other
// than the stored one. Scope fields the update does not write come from the
// stored row.
//
// Batch creates of slices are rejected: rows in one batch cannot see each
// other before they are written. An update that would write one name to
// several rows fails with ErrMultiRowUpdate.
package gormstore
