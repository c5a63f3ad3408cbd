package entity

// Settings — идентификаторы каналов и ролей чат-платформы. Читаются при
// старте, меняются административными командами и переживают рестарт в файле;
// ядро тикетов их не валидирует, а только читает канал LFG и пинги ролей.
type Settings struct {
	NavChannelID      string            `json:"nav_channel_id"`
	LFGChannelID      string            `json:"lfg_channel_id"`
	ArbitrationRoleID string            `json:"arbitration_role_id"`
	CascadeRoleID     string            `json:"cascade_role_id"`
	MapRoles          map[string]string `json:"map_roles"`
}

// RoleMention возвращает идентификатор роли для пинга под данный оффер:
// роль конкретной карты, если она назначена, иначе роль типа миссии.
func (s Settings) RoleMention(offer Offer) string {
	if offer.Kind == OfferCascade {
		return s.CascadeRoleID
	}
	if offer.Map != nil {
		if roleID, ok := s.MapRoles[offer.Map.Name]; ok && roleID != "" {
			return roleID
		}
	}
	return s.ArbitrationRoleID
}
