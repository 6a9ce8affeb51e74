package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)
}

func TestBaseModelBeforeCreateKeepsExistingID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	require.NoError(t, base.BeforeCreate(nil))
	require.Equal(t, "fixed", base.ID)
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"user", func() *BaseModel { return &(&User{}).BaseModel }},
		{"role", func() *BaseModel { return &(&Role{}).BaseModel }},
		{"permission", func() *BaseModel { return &(&Permission{}).BaseModel }},
		{"project", func() *BaseModel { return &(&Project{}).BaseModel }},
		{"phase", func() *BaseModel { return &(&Phase{}).BaseModel }},
		{"vendor", func() *BaseModel { return &(&Vendor{}).BaseModel }},
		{"material", func() *BaseModel { return &(&Material{}).BaseModel }},
		{"expense", func() *BaseModel { return &(&Expense{}).BaseModel }},
		{"document", func() *BaseModel { return &(&Document{}).BaseModel }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			require.NoError(t, model.BeforeCreate(nil))
			require.NotEmpty(t, model.ID)
		})
	}
}

func TestStandaloneModelsGenerateIDs(t *testing.T) {
	session := &Session{}
	require.NoError(t, session.BeforeCreate(nil))
	require.NotEmpty(t, session.ID)

	audit := &AuditLog{}
	require.NoError(t, audit.BeforeCreate(nil))
	require.NotEmpty(t, audit.ID)
}

func TestTableNames(t *testing.T) {
	require.Equal(t, "role_permissions", RolePermission{}.TableName())
	require.Equal(t, "cache_entries", CacheEntry{}.TableName())
}
