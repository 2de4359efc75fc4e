package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleCreator, PermSubmitCampaign, true},
		{RoleCreator, PermAnswerQuestion, true},
		{RoleCreator, PermDecideCampaign, false},
		{RoleDonor, PermDonate, true},
		{RoleDonor, PermSubmitCampaign, false},
		{RoleAdmin, PermDecideCampaign, true},
		{RoleAdmin, PermRunReconciliation, true},
		{RoleAdmin, PermSubmitCampaign, false},
		{"unknown", PermDonate, false},
		{"", PermDonate, false},
	}

	for _, c := range cases {
		if got := HasPermission(c.role, c.permission); got != c.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", c.role, c.permission, got, c.want)
		}
	}
}

func TestDonorCannotModerate(t *testing.T) {
	for _, p := range []string{PermDecideCampaign, PermCancelAnyCampaign, PermFeatureCampaign, PermRunReconciliation} {
		if HasPermission(RoleDonor, p) {
			t.Errorf("donor unexpectedly has %q", p)
		}
		if HasPermission(RoleCreator, p) {
			t.Errorf("creator unexpectedly has %q", p)
		}
	}
}
