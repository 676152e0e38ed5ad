package wanikani

import "time"

// Subject object types as reported in Object.Object.
const (
	TypeRadical        = "radical"
	TypeKanji          = "kanji"
	TypeVocabulary     = "vocabulary"
	TypeKanaVocabulary = "kana_vocabulary"
)

// Object is the envelope every WaniKani resource arrives in.
type Object[T any] struct {
	ID     int64  `json:"id"`
	Object string `json:"object"`
	Data   T      `json:"data"`
}

// Collection is one page of a collection endpoint.
type Collection[T any] struct {
	Pages struct {
		NextURL *string `json:"next_url"`
	} `json:"pages"`
	Data []Object[T] `json:"data"`
}

// Assignment tracks the account's progress on one subject.
type Assignment struct {
	AvailableAt *time.Time `json:"available_at"`
	Hidden      bool       `json:"hidden"`
	SubjectID   int64      `json:"subject_id"`
	SubjectType string     `json:"subject_type"`
	SrsStage    int        `json:"srs_stage"`
	StartedAt   *time.Time `json:"started_at"`
}

// Subject is a radical, kanji or vocabulary item. Fields that only some
// subject types carry are left zero for the others.
type Subject struct {
	Level               int                `json:"level"`
	Slug                string             `json:"slug"`
	Characters          *string            `json:"characters"`
	CharacterImages     []Resource         `json:"character_images,omitempty"`
	Meanings            []Meaning          `json:"meanings"`
	AuxiliaryMeanings   []AuxiliaryMeaning `json:"auxiliary_meanings,omitempty"`
	MeaningMnemonic     string             `json:"meaning_mnemonic"`
	MeaningHint         *string            `json:"meaning_hint,omitempty"`
	Readings            []Reading          `json:"readings,omitempty"`
	ReadingMnemonic     string             `json:"reading_mnemonic,omitempty"`
	ReadingHint         *string            `json:"reading_hint,omitempty"`
	PronunciationAudios []Resource         `json:"pronunciation_audios,omitempty"`
}

// Meaning is one English meaning of a subject.
type Meaning struct {
	Meaning        string `json:"meaning"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

// Auxiliary meaning types.
const (
	AuxWhitelist = "whitelist"
	AuxBlacklist = "blacklist"
)

// AuxiliaryMeaning is an extra meaning that is either accepted (whitelist)
// or always rejected (blacklist).
type AuxiliaryMeaning struct {
	Meaning string `json:"meaning"`
	Type    string `json:"type"`
}

// Reading is one kana reading of a subject. Type is only set for kanji
// ("onyomi", "kunyomi", "nanori").
type Reading struct {
	Reading        string `json:"reading"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
	Type           string `json:"type,omitempty"`
}

// Resource is an image or audio file attached to a subject.
type Resource struct {
	URL         string           `json:"url"`
	ContentType string           `json:"content_type"`
	Metadata    ResourceMetadata `json:"metadata"`
}

// ResourceMetadata holds the metadata fields the cards use.
type ResourceMetadata struct {
	InlineStyles  *bool  `json:"inline_styles,omitempty"`
	VoiceActorID  int    `json:"voice_actor_id,omitempty"`
	Pronunciation string `json:"pronunciation,omitempty"`
}

// StudyMaterial holds the account's own notes on a subject.
type StudyMaterial struct {
	SubjectID       int64    `json:"subject_id"`
	MeaningSynonyms []string `json:"meaning_synonyms"`
}

// User is the part of the account profile the cache keeps.
type User struct {
	Level int `json:"level"`
}

// Review is a completed review as echoed back by the API.
type Review struct {
	SubjectID        int64 `json:"subject_id"`
	StartingSrsStage int   `json:"starting_srs_stage"`
	EndingSrsStage   int   `json:"ending_srs_stage"`
}

// ReviewResponse is the body returned when a review is created. The
// assignment it updated is included so the cache can be refreshed.
type ReviewResponse struct {
	Object[Review]
	ResourcesUpdated struct {
		Assignment *Object[Assignment] `json:"assignment"`
	} `json:"resources_updated"`
}
