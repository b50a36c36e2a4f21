package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionMediaUpload allows uploading media files.
	PermissionMediaUpload Permission = "media:upload"

	// PermissionLearnersRead allows viewing learner lists and details.
	PermissionLearnersRead Permission = "learners:read"

	// PermissionLearnersWrite allows creating and updating learners.
	PermissionLearnersWrite Permission = "learners:write"

	// PermissionLearnersResetSession allows resetting a learner's active session.
	PermissionLearnersResetSession Permission = "learners:reset_session"

	// PermissionCoursesRead allows viewing course lists and details.
	PermissionCoursesRead Permission = "courses:read"

	// PermissionCoursesWrite allows creating and updating courses, lessons, and exams.
	PermissionCoursesWrite Permission = "courses:write"

	// PermissionCoursesPublish allows publishing courses to make them available to learners.
	PermissionCoursesPublish Permission = "courses:publish"

	// PermissionAnalyticsRead allows viewing per-course analytics.
	PermissionAnalyticsRead Permission = "analytics:read"

	// PermissionAdminsRead allows viewing admin user lists and details.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsWrite allows creating, updating, and deleting admin users.
	PermissionAdminsWrite Permission = "admins:write"

	// PermissionRolesRead allows viewing admin roles and permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting admin roles.
	PermissionRolesWrite Permission = "roles:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionMediaUpload,
	PermissionLearnersRead,
	PermissionLearnersWrite,
	PermissionLearnersResetSession,
	PermissionCoursesRead,
	PermissionCoursesWrite,
	PermissionCoursesPublish,
	PermissionAnalyticsRead,
	PermissionAdminsRead,
	PermissionAdminsWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
}
