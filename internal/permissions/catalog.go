// Package permissions holds the fixed catalog of service identifiers: opaque
// string tags representing UI-visible capabilities. They are not database
// relations; the catalog is the single definition shared by the role service
// and the catalog-listing endpoint.
package permissions

// Service describes one catalog entry.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

var catalog = []Service{
	// Overview
	{ID: "dashboard", Name: "Dashboard", Category: "Overview", Description: "View dashboard and statistics"},

	// Organizations
	{ID: "list_organization", Name: "List Organizations", Category: "Organizations", Description: "View organization list"},
	{ID: "add_organization", Name: "Add Organization", Category: "Organizations", Description: "Create new organizations"},
	{ID: "edit_organization", Name: "Edit Organization", Category: "Organizations", Description: "Modify organization details"},
	{ID: "disable_organization", Name: "Disable Organization", Category: "Organizations", Description: "Disable organizations"},

	// Programs
	{ID: "list_programs", Name: "List Programs", Category: "Programs", Description: "View programs list"},
	{ID: "add_programs", Name: "Add Programs", Category: "Programs", Description: "Create new programs"},
	{ID: "edit_programs", Name: "Edit Programs", Category: "Programs", Description: "Modify program details"},
	{ID: "disable_programs", Name: "Disable Programs", Category: "Programs", Description: "Disable programs"},

	// Group management
	{ID: "list_group_head", Name: "List Group Head", Category: "Group Management", Description: "View group heads"},
	{ID: "add_group_head", Name: "Add Group Head", Category: "Group Management", Description: "Create group heads"},
	{ID: "edit_group_head", Name: "Edit Group Head", Category: "Group Management", Description: "Modify group heads"},
	{ID: "disable_group_head", Name: "Disable Group Head", Category: "Group Management", Description: "Disable group heads"},
	{ID: "add_group", Name: "Add Group", Category: "Group Management", Description: "Create groups"},
	{ID: "edit_group", Name: "Edit Group", Category: "Group Management", Description: "Modify groups"},
	{ID: "group_map", Name: "Group Map", Category: "Group Management", Description: "View group mappings"},
	{ID: "group_list", Name: "Group List", Category: "Group Management", Description: "View group lists"},
	{ID: "group_status", Name: "Group Status", Category: "Group Management", Description: "View group status"},
	{ID: "bulk_upload", Name: "Bulk Upload", Category: "Group Management", Description: "Upload groups in bulk"},

	// Participants
	{ID: "add_program_participants", Name: "Add Program Participants", Category: "Participants", Description: "Add participants to program"},
	{ID: "add_participants", Name: "Add Participants", Category: "Participants", Description: "Create participants"},
	{ID: "edit_participants", Name: "Edit Participants", Category: "Participants", Description: "Modify participant details"},
	{ID: "disable_participants", Name: "Disable Participants", Category: "Participants", Description: "Disable participants"},
	{ID: "list_program_participants", Name: "List Program Participants", Category: "Participants", Description: "View program participants"},
	{ID: "list_participants", Name: "List Participants", Category: "Participants", Description: "View all participants"},

	// Activities
	{ID: "list_activity", Name: "List Activity", Category: "Activities", Description: "View activities list"},
	{ID: "activity_status", Name: "Activity Status", Category: "Activities", Description: "View activity status"},
	{ID: "delete_activity_files", Name: "Delete Activity Files", Category: "Activities", Description: "Remove activity files"},
	{ID: "activity_files_upload", Name: "Activity Files Upload", Category: "Activities", Description: "Upload activity files"},
	{ID: "generate_activity_link", Name: "Generate Activity Link", Category: "Activities", Description: "Create activity links"},
	{ID: "activity_add", Name: "Activity Add", Category: "Activities", Description: "Create new activities"},
	{ID: "activity_files_listing", Name: "Activity Files Listing", Category: "Activities", Description: "View activity files"},
	{ID: "activity_view_anonymous", Name: "Activity View Anonymous", Category: "Activities", Description: "View anonymous activity data"},

	// Questionnaires
	{ID: "category_add", Name: "Category Add", Category: "Questionnaires", Description: "Create question categories"},
	{ID: "category_edit", Name: "Category Edit", Category: "Questionnaires", Description: "Modify categories"},
	{ID: "category_list", Name: "Category List", Category: "Questionnaires", Description: "View categories"},
	{ID: "category_map", Name: "Category Map", Category: "Questionnaires", Description: "Map categories"},
	{ID: "category_status", Name: "Category Status", Category: "Questionnaires", Description: "View category status"},
	{ID: "question_add", Name: "Question Add", Category: "Questionnaires", Description: "Create questions"},
	{ID: "question_edit", Name: "Question Edit", Category: "Questionnaires", Description: "Modify questions"},
	{ID: "question_list", Name: "Question List", Category: "Questionnaires", Description: "View questions"},
	{ID: "question_bank_list", Name: "Question Bank List", Category: "Questionnaires", Description: "View question bank"},
	{ID: "question_bank_add", Name: "Question Bank Add", Category: "Questionnaires", Description: "Add to question bank"},
	{ID: "question_bank_edit", Name: "Question Bank Edit", Category: "Questionnaires", Description: "Edit question bank"},
	{ID: "question_bank_status", Name: "Question Bank Status", Category: "Questionnaires", Description: "View question bank status"},
	{ID: "question_header_list", Name: "Question Header List", Category: "Questionnaires", Description: "View question headers"},
	{ID: "question_header_add", Name: "Question Header Add", Category: "Questionnaires", Description: "Create question headers"},
	{ID: "question_header_edit", Name: "Question Header Edit", Category: "Questionnaires", Description: "Edit question headers"},
	{ID: "question_header_tables", Name: "Question Header Tables", Category: "Questionnaires", Description: "View header tables"},

	// Communications
	{ID: "sms_edit", Name: "SMS Edit", Category: "Communications", Description: "Modify SMS"},
	{ID: "sms_status", Name: "SMS Status", Category: "Communications", Description: "View SMS status"},
	{ID: "send_sms", Name: "Send SMS", Category: "Communications", Description: "Send SMS messages"},
	{ID: "email_status", Name: "Email Status", Category: "Communications", Description: "View email status"},
	{ID: "send_email", Name: "Send Email", Category: "Communications", Description: "Send emails"},
	{ID: "list_email", Name: "List Email", Category: "Communications", Description: "View email list"},

	// Reports
	{ID: "report_download", Name: "Report Download", Category: "Reports", Description: "Download reports"},
	{ID: "edit_dynamic_report", Name: "Edit Dynamic Report", Category: "Reports", Description: "Modify dynamic reports"},
	{ID: "dynamic_report_status", Name: "Dynamic Report Status", Category: "Reports", Description: "View report status"},
	{ID: "dynamic_report_list", Name: "Dynamic Report List", Category: "Reports", Description: "View reports list"},
	{ID: "generate_dynamic_report", Name: "Generate Dynamic Report", Category: "Reports", Description: "Create dynamic reports"},
	{ID: "filter_report", Name: "Filter Report", Category: "Reports", Description: "Filter reports"},
	{ID: "view_report", Name: "View Report", Category: "Reports", Description: "View reports"},

	// Settings
	{ID: "theme_customization", Name: "Theme Customization", Category: "Settings", Description: "Customize theme"},
	{ID: "page_edit", Name: "Page Edit", Category: "Settings", Description: "Edit pages"},
	{ID: "page_list", Name: "Page List", Category: "Settings", Description: "View pages"},
	{ID: "page_add", Name: "Page Add", Category: "Settings", Description: "Create pages"},
	{ID: "settings", Name: "Settings", Category: "Settings", Description: "Access settings"},

	// Users and roles
	{ID: "edit_read", Name: "Edit Read", Category: "Permissions", Description: "Edit read permissions"},
	{ID: "login", Name: "Login", Category: "Authentication", Description: "Login access"},
	{ID: "list_user", Name: "List User", Category: "Users", Description: "View users list"},
	{ID: "add_user", Name: "Add User", Category: "Users", Description: "Create users"},
	{ID: "edit_user", Name: "Edit User", Category: "Users", Description: "Modify users"},
	{ID: "map_user", Name: "Map User", Category: "Users", Description: "Map users to programs"},
	{ID: "edit_roles", Name: "Edit Roles", Category: "Roles", Description: "Modify roles"},
	{ID: "list_roles", Name: "List Roles", Category: "Roles", Description: "View roles"},
	{ID: "add_roles", Name: "Add Roles", Category: "Roles", Description: "Create roles"},

	// Special access
	{ID: "is_group_head", Name: "Is Group Head", Category: "Special Access", Description: "Group head privileges"},
	{ID: "is_organization", Name: "Is Organization", Category: "Special Access", Description: "Organization privileges"},
	{ID: "is_manager", Name: "Is Manager", Category: "Special Access", Description: "Manager privileges"},
	{ID: "is_moderator", Name: "Is Moderator", Category: "Special Access", Description: "Moderator privileges"},
	{ID: "is_support_admin", Name: "Is Support Admin", Category: "Special Access", Description: "Support admin privileges"},
	{ID: "is_admin", Name: "Is Admin", Category: "Special Access", Description: "Admin privileges"},
	{ID: "profile", Name: "Profile", Category: "User", Description: "View/edit profile"},
}

var byID = func() map[string]Service {
	m := make(map[string]Service, len(catalog))
	for _, s := range catalog {
		m[s.ID] = s
	}
	return m
}()

// Catalog returns the full service catalog.
func Catalog() []Service {
	out := make([]Service, len(catalog))
	copy(out, catalog)
	return out
}

// IsKnown reports whether the identifier is a catalog entry.
func IsKnown(id string) bool {
	_, ok := byID[id]
	return ok
}

// FilterKnown returns the subset of ids that are catalog entries, preserving
// input order. Unknown identifiers are silently dropped.
func FilterKnown(ids []string) []string {
	var out []string
	for _, id := range ids {
		if IsKnown(id) {
			out = append(out, id)
		}
	}
	return out
}
