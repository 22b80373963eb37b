package diag

import (
	"fmt"
	"html"
	"strings"

	"stats_bot/internal/bot"
)

func confirmationText(identity bot.Identity, dest bot.Destination, marketOK bool) string {
	var sb strings.Builder

	sb.WriteString("🧪 <b>ТЕСТОВОЕ СООБЩЕНИЕ</b>\n\n")
	fmt.Fprintf(&sb, "✅ Бот @%s успешно запущен\n", html.EscapeString(identity.UserName))
	sb.WriteString("✅ Подключение к Telegram работает\n")
	fmt.Fprintf(&sb, "✅ Доступ к каналу «%s» есть\n", html.EscapeString(dest.Title))
	if marketOK {
		sb.WriteString("✅ API CoinMarketCap доступен\n")
	} else {
		sb.WriteString("⚠️ API CoinMarketCap недоступен, статистика будет позже\n")
	}
	sb.WriteString("\n💎 <b>MarvelMarket</b> - Система запущена!")

	return sb.String()
}
