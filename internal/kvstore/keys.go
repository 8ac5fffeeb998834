package kvstore

// Slot names. These are part of the on-disk format and must stay stable
// across releases.
const (
	KeySessionIdentity = "session_identity"
	KeyLanguage        = "language"
	KeyHistory         = "generation_history"
	KeySiteConfig      = "site_config"
	KeyUserSettings    = "user_settings"
	KeyAdminLockout    = "admin_lockout"
	KeyBannedEmails    = "banned_emails"
	KeyRegisteredUsers = "registered_users"
	KeyAdminIdentity   = "admin_identity"
)
