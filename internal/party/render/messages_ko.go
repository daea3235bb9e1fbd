package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Korean

	message.SetString(lang, "party.title.untitled", "파티")
	message.SetString(lang, "party.title.recruiting", "🟡 모집중 — %s")
	message.SetString(lang, "party.title.active", "🟢 진행중 — %s")
	message.SetString(lang, "party.title.closed", "⚫ 종료 — %s")
	message.SetString(lang, "party.schedule.immediate", "⚡ 모이면 바로 시작")
	message.SetString(lang, "party.schedule.at", "🕒 %s 시작")
	message.SetString(lang, "party.slot.plain", "%d. %s")
	message.SetString(lang, "party.slot.noted", "%d. %s — %s")
	message.SetString(lang, "party.slot.empty", "%d. (비어 있음)")
	message.SetString(lang, "party.waiting.plain", "⏳ %s")
	message.SetString(lang, "party.waiting.noted", "⏳ %s — %s")
	message.SetString(lang, "party.roster.closed", "(종료됨)")
}
