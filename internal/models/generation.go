package models

import "time"

// Generation представляет одну успешную генерацию речи: исходный текст,
// голос, параметры и ссылку на сохранённый аудиофайл. Запись неизменяема,
// владелец может только удалить её.
type Generation struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"-"`
	VoiceID   int       `json:"voice_id"` // 0, если голос был удалён после генерации
	VoiceName string    `json:"voice_name,omitempty"`
	Text      string    `json:"text"`
	Speed     float64   `json:"speed"`
	Pitch     float64   `json:"pitch"`
	Emotion   string    `json:"emotion"`
	AudioPath string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerationParams — параметры синтеза, принятые от клиента.
// Pitch и Emotion принимаются, но движок синтеза честно их не поддерживает:
// эмоция имитируется текстовой вставкой, pitch только сохраняется в записи.
type GenerationParams struct {
	Speed   float64
	Pitch   float64
	Emotion string
}
