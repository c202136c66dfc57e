package fixtures

import (
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// ==========================================
// DEFAULT LEAVE CATEGORIES
// ==========================================

// GetDefaultLeaveCategories returns the statutory leave categories of the
// Thai Labour Protection Act, plus company ordination and training leave.
// A nil DefaultAllowance is unbounded.
func GetDefaultLeaveCategories(organizationID string) []leave.Category {
	return []leave.Category{
		// Sick leave - paid up to 30 days a year
		{
			OrganizationID:             organizationID,
			Code:                       "SICK",
			Name:                       "ลาป่วย",
			Description:                strPtr("Sick leave, paid up to 30 days per year"),
			DefaultAllowance:           nil,
			MaxPaidDays:                intPtr(30),
			RequiresSupportingDocument: true,
			Color:                      strPtr("#F44336"), // Red
			IsActive:                   true,
		},

		// Personal business leave - at least 3 days a year
		{
			OrganizationID:        organizationID,
			Code:                  "PERSONAL",
			Name:                  "ลากิจ",
			Description:           strPtr("Leave for necessary personal business, at least 3 days per year"),
			DefaultAllowance:      intPtr(3),
			MaxPaidDays:           intPtr(3),
			RequiresAdvanceNotice: true,
			NoticeDays:            1,
			Color:                 strPtr("#2196F3"), // Blue
			IsActive:              true,
		},

		// Annual vacation - at least 6 days after one year of service
		{
			OrganizationID:        organizationID,
			Code:                  "VACATION",
			Name:                  "ลาพักร้อน",
			Description:           strPtr("Annual vacation, at least 6 days after one year of service"),
			DefaultAllowance:      intPtr(6),
			MaxPaidDays:           intPtr(6),
			RequiresAdvanceNotice: true,
			NoticeDays:            7,
			Color:                 strPtr("#4CAF50"), // Green
			IsActive:              true,
		},

		// Maternity leave - up to 98 days, 45 of them paid
		{
			OrganizationID:             organizationID,
			Code:                       "MATERNITY",
			Name:                       "ลาคลอดบุตร",
			Description:                strPtr("Maternity leave up to 98 days, 45 days paid"),
			DefaultAllowance:           intPtr(98),
			MaxPaidDays:                intPtr(45),
			RequiresSupportingDocument: true,
			RequiresAdvanceNotice:      true,
			NoticeDays:                 30,
			Color:                      strPtr("#E91E63"), // Pink
			IsActive:                   true,
		},

		// Sterilization leave - as prescribed by a physician
		{
			OrganizationID:             organizationID,
			Code:                       "STERILIZATION",
			Name:                       "ลาทำหมัน",
			Description:                strPtr("Sterilization leave as prescribed by a physician"),
			RequiresSupportingDocument: true,
			RequiresAdvanceNotice:      true,
			NoticeDays:                 7,
			Color:                      strPtr("#9C27B0"), // Purple
			IsActive:                   true,
		},

		// Military service - paid up to 60 days
		{
			OrganizationID:             organizationID,
			Code:                       "MILITARY",
			Name:                       "ลารับราชการทหาร",
			Description:                strPtr("Military service leave, paid up to 60 days"),
			MaxPaidDays:                intPtr(60),
			RequiresSupportingDocument: true,
			RequiresAdvanceNotice:      true,
			NoticeDays:                 7,
			Color:                      strPtr("#FFA000"), // Amber
			IsActive:                   true,
		},

		// Ordination - company policy
		{
			OrganizationID:             organizationID,
			Code:                       "ORDINATION",
			Name:                       "ลาอุปสมบท",
			Description:                strPtr("Leave for ordination as a monk, per company policy"),
			DefaultAllowance:           intPtr(15),
			MaxPaidDays:                intPtr(15),
			RequiresSupportingDocument: true,
			RequiresAdvanceNotice:      true,
			NoticeDays:                 30,
			Color:                      strPtr("#FF9800"), // Orange
			IsActive:                   true,
		},

		// Training
		{
			OrganizationID:             organizationID,
			Code:                       "TRAINING",
			Name:                       "ลาฝึกอบรม",
			Description:                strPtr("Leave for training or professional development"),
			DefaultAllowance:           intPtr(5),
			MaxPaidDays:                intPtr(5),
			RequiresSupportingDocument: true,
			RequiresAdvanceNotice:      true,
			NoticeDays:                 7,
			Color:                      strPtr("#00BCD4"), // Cyan
			IsActive:                   true,
		},
	}
}

// ==========================================
// DEFAULT ROLE PERMISSIONS
// ==========================================

// GetDefaultRolePermissions flattens rbac.DefaultRolePermissions into grants
// for one organization.
func GetDefaultRolePermissions(organizationID string) []rbac.RolePermission {
	grants := make([]rbac.RolePermission, 0)
	for _, role := range rbac.Roles {
		for _, permission := range rbac.DefaultRolePermissions[role] {
			grants = append(grants, rbac.RolePermission{
				OrganizationID: organizationID,
				Role:           role,
				Permission:     permission,
			})
		}
	}
	return grants
}
