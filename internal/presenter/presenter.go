// Package presenter превращает срезы состояния тикетов в сообщения Discord.
// Никакого I/O: вход — Snapshot и настройки, выход — готовое сообщение.
package presenter

import (
	"fmt"
	"strings"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/pkg/discord"
)

// Цвета эмбедов (палитра Discord).
const (
	colorRed       = 0xe74c3c
	colorGold      = 0xf1c40f
	colorBlue      = 0x3498db
	colorGreen     = 0x2ecc71
	colorDarkGreen = 0x1f8b4c
	colorDarkRed   = 0x992d22
)

const (
	navImageURL     = "https://avatars.mds.yandex.net/i?id=bfb7df6ab9ff7534c87f3996ad64e2cb_l-5869570-images-thumbs&n=13"
	cascadeImageURL = "https://static.wikia.nocookie.net/warframe/images/6/64/%D0%A2%D1%80%D0%B0%D0%BA%D1%81%D0%BE%D0%B2%D0%B0%D1%8F_%D0%9F%D0%BB%D0%B0%D0%B7%D0%BC%D0%B0_%D0%B2%D0%B8%D0%BA%D0%B8.png/revision/latest?cb=20220428000041&path-prefix=ru"
)

var factionIcons = map[string]string{
	"Гринир":     "https://images-ext-1.discordapp.net/external/Wmh0isPGDXG8s1_xJKjSW_F6CHl6aBQXoRIINUdvm0g/https/assets.empx.cc/Lotus/Interface/Graphics/WorldStatePanel/Grineer.png?format=webp&quality=lossless",
	"Корпус":     "https://images-ext-1.discordapp.net/external/BUNqoLvclDjqa3OUzE04XI4E1nXvU8qR9f_IIb5AP7o/https/assets.empx.cc/Lotus/Interface/Graphics/WorldStatePanel/Corpus.png?format=webp&quality=lossless",
	"Зараженные": "https://images-ext-1.discordapp.net/external/9_z1utcRwJxSSw4n6ebRLAzqynWnAJAVJDphsjyrg9E/https/assets.empx.cc/Lotus/Interface/Graphics/WorldStatePanel/Infested.png?format=webp&quality=lossless",
}

var tierColors = map[string]int{
	entity.TierS: colorRed,
	entity.TierA: colorGold,
	entity.TierB: colorBlue,
}

const vacantLabel = "**[СВОБОДНО]**"

func mentionUser(id entity.UserID) string {
	return fmt.Sprintf("<@%s>", id)
}

func mentionRole(id string) string {
	return fmt.Sprintf("<@&%s>", id)
}

func mapInfoText(m *entity.ArbitrationMap) string {
	return fmt.Sprintf("%s | %s (%s)", m.Tier, m.Name, m.Mission)
}

// AnnouncementContent — текстовая строка над эмбедом объявления: пинг роли
// и создатель.
func AnnouncementContent(snap entity.Snapshot, roleID string) string {
	var b strings.Builder
	if roleID != "" {
		b.WriteString(mentionRole(roleID))
		b.WriteString(" | ")
	}
	if snap.Offer.Kind == entity.OfferArbitration && snap.Offer.Map != nil {
		fmt.Fprintf(&b, "Пати на Арбитраж ищет игроков! Создатель: %s | Карта: **%s**",
			mentionUser(snap.Creator), mapInfoText(snap.Offer.Map))
	} else {
		fmt.Fprintf(&b, "Пати на **Каскад** ищет игроков! Создатель: %s", mentionUser(snap.Creator))
	}
	return b.String()
}

// RosterBoard — борд сбора: статус, параметры миссии, комментарий и слоты
// в порядке раскладки.
func RosterBoard(snap entity.Snapshot) *discord.Message {
	embed := discord.Embed{}
	fieldIcon := "⚙️"

	switch {
	case snap.Offer.Kind == entity.OfferArbitration && snap.Offer.Map != nil:
		m := snap.Offer.Map
		embed.Color = tierColor(m.Tier)
		if icon, ok := factionIcons[m.Faction]; ok {
			embed.Thumbnail = &discord.EmbedImage{URL: icon}
		}
		embed.Title = rosterTitle(mapInfoText(m), snap.Full)
		embed.Fields = append(embed.Fields,
			discord.EmbedField{Name: "Тип", Value: fmt.Sprintf("%s - %s", m.Mission, m.Faction), Inline: true},
			discord.EmbedField{Name: "Сет/Тайлы", Value: m.Tileset, Inline: true},
			discord.EmbedField{Name: "Истекает", Value: "1 час с момента создания", Inline: true},
		)
	default:
		fieldIcon = "✨"
		embed.Color = colorBlue
		embed.Thumbnail = &discord.EmbedImage{URL: cascadeImageURL}
		embed.Title = rosterTitle("Каскад", snap.Full)
		embed.Fields = append(embed.Fields,
			discord.EmbedField{Name: "Награда", Value: "Мистификаторы (Праймхлам/Отголоски)", Inline: true},
			discord.EmbedField{Name: "Тип", Value: "Каскад (Бездна)", Inline: true},
			discord.EmbedField{Name: "Истекает", Value: "1 час с момента создания", Inline: true},
		)
	}

	if snap.Note != "" {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  "📝 Комментарий создателя:",
			Value: fmt.Sprintf("> *%s*", snap.Note),
		})
	}

	for _, seat := range snap.Seats {
		value := vacantLabel
		if !seat.Occupant.IsVacant() {
			value = mentionUser(entity.UserID(seat.Occupant))
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  fmt.Sprintf("%s %s", fieldIcon, seat.Name),
			Value: value,
		})
	}

	embed.Footer = &discord.EmbedFooter{
		Text: fmt.Sprintf("Создатель: %s | Удаление через 1 час после создания.", snap.Creator),
	}

	return &discord.Message{Embeds: []discord.Embed{embed}}
}

// SummaryBoard — финальный борд собранной пати с полным составом.
func SummaryBoard(snap entity.Snapshot) *discord.Message {
	embed := discord.Embed{}

	if snap.Offer.Kind == entity.OfferArbitration && snap.Offer.Map != nil {
		m := snap.Offer.Map
		embed.Title = "🚀 Пати на Арбитраж Собрана!"
		embed.Description = fmt.Sprintf(
			"**Карта:** %s (%s)\n**Миссия:** %s - %s\n**Тайлсет:** %s",
			m.Name, m.Tier, m.Mission, m.Faction, m.Tileset)
		embed.Color = tierColor(m.Tier)
	} else {
		embed.Title = "🚀 Пати на Каскад Собрана!"
		embed.Description = "**Миссия:** Каскад (Бездна) \n**Награда:** Мистификаторы (Праймхлам/Отголоски)"
		embed.Color = colorDarkGreen
	}

	var members []string
	for _, seat := range snap.Seats {
		if !seat.Occupant.IsVacant() {
			members = append(members, fmt.Sprintf("**%s:** %s", seat.Name, mentionUser(entity.UserID(seat.Occupant))))
		}
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{
		Name:  "⚔️ Состав группы:",
		Value: strings.Join(members, "\n"),
	})

	if snap.Note != "" {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  "📝 Комментарий создателя:",
			Value: fmt.Sprintf("> *%s*", snap.Note),
		})
	}

	embed.Footer = &discord.EmbedFooter{
		Text: fmt.Sprintf("Пати успешно закрыта. Создатель: %s", snap.Creator),
	}

	return &discord.Message{
		Content: completionContent(snap),
		Embeds:  []discord.Embed{embed},
	}
}

func completionContent(snap entity.Snapshot) string {
	var mentions []string
	for _, seat := range snap.Seats {
		if !seat.Occupant.IsVacant() {
			mentions = append(mentions, mentionUser(entity.UserID(seat.Occupant)))
		}
	}
	return fmt.Sprintf("✅ **ПАТИ СОБРАНА!** %s — ВПЕРЕД НА МИССИЮ!", strings.Join(mentions, ", "))
}

// NavigationBoard — стартовое окно подбора пати для канала навигации.
func NavigationBoard() *discord.Message {
	return &discord.Message{
		Embeds: []discord.Embed{{
			Title:       "⬇️ СИСТЕМА ПОДБОРА ПАТИ WARFRAME ⬇️",
			Description: "Нажмите кнопку, чтобы начать сбор группы для миссий **Арбитраж** или **Каскад**.",
			Color:       colorDarkRed,
			Image:       &discord.EmbedImage{URL: navImageURL},
			Footer:      &discord.EmbedFooter{Text: "Автоматическое удаление тикетов через 1 час (требуется настройка LFG канала)."},
		}},
	}
}

// LoadingBoard — заглушка на время создания тикета, пока идет первая правка.
func LoadingBoard(offer entity.Offer) *discord.Message {
	title := "⏳ Загрузка тикета: Каскад"
	color := colorBlue
	if offer.Kind == entity.OfferArbitration && offer.Map != nil {
		title = fmt.Sprintf("⏳ Загрузка тикета: %s", mapInfoText(offer.Map))
		color = tierColor(offer.Map.Tier)
	}
	return &discord.Message{Embeds: []discord.Embed{{Title: title, Color: color}}}
}

func rosterTitle(info string, full bool) string {
	if full {
		return fmt.Sprintf("✅ ЗАКРЫТО | %s | Пати собрана!", info)
	}
	return fmt.Sprintf("⚠️ СБОР | %s | Нужны игроки", info)
}

func tierColor(tier string) int {
	if color, ok := tierColors[tier]; ok {
		return color
	}
	return colorGold
}
