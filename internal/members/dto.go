package members

// ===== Responses =====

type MemberInfo struct {
	MemberID int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	RoleName string  `json:"role_name"`
}

func (m *Member) Info() MemberInfo {
	info := MemberInfo{
		MemberID: m.MemberID,
		Name:     m.Name,
		Email:    m.Email,
		RoleName: string(m.RoleName),
	}
	if m.Phone.Valid {
		v := m.Phone.String
		info.Phone = &v
	}
	return info
}
