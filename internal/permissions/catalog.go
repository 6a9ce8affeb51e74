package permissions

// Dashboard capabilities. Route guards refer to these names.
const (
	AddProject        = "Add Project"
	EditProject       = "Edit Project"
	DeleteProject     = "Delete Project"
	ViewProjectStatus = "View Project Status"
	UpdateProgress    = "Update Progress"
	UploadSiteUpdates = "Upload Site Updates"
	ViewExpenses      = "View Expenses"
	ManageExpenses    = "Manage Expenses"
	ManageMaterials   = "Manage Materials"
	ViewReports       = "View Reports"
	GenerateReports   = "Generate Reports"
	ManageUsers       = "Manage Users"
	ManageRoles       = "Manage Roles"
)

// AdministratorRole is the seeded role holding every catalog permission.
const AdministratorRole = "Administrator"

func init() {
	defs := []*Definition{
		{Name: AddProject, Module: "projects", Description: "Create construction projects"},
		{Name: EditProject, Module: "projects", Description: "Edit project details and phases"},
		{Name: DeleteProject, Module: "projects", Description: "Remove project phases"},
		{Name: ViewProjectStatus, Module: "projects", Description: "View projects, phases and the dashboard"},
		{Name: UpdateProgress, Module: "progress", Description: "Update phase progress"},
		{Name: UploadSiteUpdates, Module: "progress", Description: "Upload site documents"},
		{Name: ViewExpenses, Module: "finance", Description: "View expenses"},
		{Name: ManageExpenses, Module: "finance", Description: "Record expenses"},
		{Name: ManageMaterials, Module: "materials", Description: "Manage materials and vendors"},
		{Name: ViewReports, Module: "reports", Description: "View expense reports"},
		{Name: GenerateReports, Module: "reports", Description: "Export expense reports"},
		{Name: ManageUsers, Module: "admin", Description: "Invite, edit and deactivate users"},
		{Name: ManageRoles, Module: "admin", Description: "Create roles and assign permissions"},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
