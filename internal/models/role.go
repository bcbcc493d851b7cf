package models

import (
	"fmt"
	"strings"
)

// Role - роль пользователя, выданная сервисом идентификации.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleMerchant   Role = "merchant"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// ParseRole разбирает роль из токена. Неизвестные роли не принимаются.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleMerchant:
		return RoleMerchant, nil
	case RoleTechnician:
		return RoleTechnician, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanOwnProjects сообщает, может ли роль создавать проекты и управлять ими.
func (r Role) CanOwnProjects() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	case RoleMerchant, RoleTechnician:
		return false
	default:
		return false
	}
}

// CanBid сообщает, может ли роль подавать предложения.
func (r Role) CanBid() bool {
	switch r {
	case RoleMerchant, RoleAdmin:
		return true
	case RoleCustomer, RoleTechnician:
		return false
	default:
		return false
	}
}

// Actor - аутентифицированный пользователь, выполняющий запрос.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin сообщает, что пользователь - администратор.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage сообщает, может ли пользователь изменять ресурс владельца ownerID.
func (a Actor) CanManage(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}
