package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "party.title.untitled", "Party")
	message.SetString(lang, "party.title.recruiting", "🟡 Recruiting — %s")
	message.SetString(lang, "party.title.active", "🟢 In progress — %s")
	message.SetString(lang, "party.title.closed", "⚫ Closed — %s")
	message.SetString(lang, "party.schedule.immediate", "⚡ Starts as soon as everyone gathers")
	message.SetString(lang, "party.schedule.at", "🕒 Starts at %s")
	message.SetString(lang, "party.slot.plain", "%d. %s")
	message.SetString(lang, "party.slot.noted", "%d. %s — %s")
	message.SetString(lang, "party.slot.empty", "%d. (open)")
	message.SetString(lang, "party.waiting.plain", "⏳ %s")
	message.SetString(lang, "party.waiting.noted", "⏳ %s — %s")
	message.SetString(lang, "party.roster.closed", "(closed)")
}
