package activity

// Action names written to the audit log.
const (
	ActionUserRegistered  = "user.registered"
	ActionUserCreated     = "user.created"
	ActionUserUpdated     = "user.updated"
	ActionUserDeleted     = "user.deleted"
	ActionAdminBootstrap  = "admin.bootstrapped"
	ActionProfileUpdated  = "profile.updated"
	ActionProfileReset    = "profile.reset"
	ActionProfileExported = "profile.exported"
	ActionTwoFactorOn     = "profile.2fa_enabled"
	ActionTwoFactorOff    = "profile.2fa_disabled"
	ActionToolCreated     = "tool.created"
	ActionToolUpdated     = "tool.updated"
	ActionToolDeleted     = "tool.deleted"
	ActionPlanAccepted    = "ai.plan_accepted"
	ActionResetSweep      = "tasks.reset_sweep"
)
