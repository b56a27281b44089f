// Package models содержит доменные структуры голосов: встроенные пресеты
// и пользовательские клоны, привязанные к образцу аудио.
package models

import "time"

// Вид голоса: встроенный пресет или пользовательский клон.
const (
	VoiceKindBuiltin = "builtin"
	VoiceKindCloned  = "cloned"
)

// Voice представляет голос, доступный для синтеза речи.
// У встроенных голосов UserUID пустой, у клонов он ссылается на владельца,
// а SamplePath — на сохранённый образец аудио.
type Voice struct {
	ID          int       `json:"id"`
	UserUID     string    `json:"user_uid,omitempty"` // Пустой для встроенных голосов
	Name        string    `json:"name"`
	Kind        string    `json:"kind"` // builtin или cloned
	EngineVoice string    `json:"engine_voice"`
	Language    string    `json:"language"`
	SamplePath  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Builtin сообщает, является ли голос встроенным пресетом.
func (v *Voice) Builtin() bool {
	return v.Kind == VoiceKindBuiltin
}

// VisibleTo проверяет, виден ли голос пользователю: встроенные видны всем,
// клоны — только владельцу.
func (v *Voice) VisibleTo(userUID string) bool {
	return v.Builtin() || v.UserUID == userUID
}
