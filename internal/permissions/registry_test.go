package permissions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogRegistersDashboardCapabilities(t *testing.T) {
	names := Names()
	for _, expected := range []string{
		AddProject, EditProject, DeleteProject, ViewProjectStatus,
		UpdateProgress, UploadSiteUpdates, ViewExpenses, ManageExpenses,
		ManageMaterials, ViewReports, GenerateReports, ManageUsers, ManageRoles,
	} {
		require.Contains(t, names, expected)
	}
	require.IsNonDecreasing(t, names)
}

func TestRegisterPreventsDuplicates(t *testing.T) {
	name := "Inspect Scaffolding"
	require.NoError(t, Register(&Definition{Name: name, Module: "safety"}))
	t.Cleanup(func() { removeDefinition(name) })

	err := Register(&Definition{Name: " " + name + " ", Module: "safety"})
	require.Error(t, err)
	require.True(t, errors.Is(err, errDuplicateName))
}

func TestRegisterRejectsBlankNames(t *testing.T) {
	require.ErrorIs(t, Register(&Definition{Name: "   "}), errEmptyName)
	require.ErrorIs(t, Register(nil), errNilDefinition)
}

func TestGetReturnsCopy(t *testing.T) {
	def, ok := Get(ManageMaterials)
	require.True(t, ok)
	require.Equal(t, "materials", def.Module)

	def.Module = "changed"
	again, ok := Get(ManageMaterials)
	require.True(t, ok)
	require.Equal(t, "materials", again.Module)

	_, ok = Get("Fly Drones")
	require.False(t, ok)
}

func TestByModule(t *testing.T) {
	defs := ByModule("reports")
	require.Len(t, defs, 2)
	require.Equal(t, GenerateReports, defs[0].Name)
	require.Equal(t, ViewReports, defs[1].Name)
}
