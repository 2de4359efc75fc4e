package rbac

// Role constants mirror users.role.
const (
	RoleDonor   = "donor"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Permission constants
const (
	PermSubmitCampaign    = "submit_campaign"
	PermEditCampaign      = "edit_campaign"
	PermCancelOwnCampaign = "cancel_own_campaign"
	PermDonate            = "donate"
	PermAskQuestion       = "ask_question"
	PermAnswerQuestion    = "answer_question"
	PermDecideCampaign    = "decide_campaign"
	PermCancelAnyCampaign = "cancel_any_campaign"
	PermFeatureCampaign   = "feature_campaign"
	PermRunReconciliation = "run_reconciliation"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleDonor: {
		PermDonate, PermAskQuestion,
	},
	RoleCreator: {
		PermSubmitCampaign, PermEditCampaign, PermCancelOwnCampaign,
		PermAnswerQuestion, PermDonate, PermAskQuestion,
	},
	RoleAdmin: {
		PermDecideCampaign, PermCancelAnyCampaign, PermFeatureCampaign,
		PermRunReconciliation,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
