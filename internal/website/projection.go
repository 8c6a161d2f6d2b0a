package website

import (
	"encoding/json"
	"reflect"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
)

// DefaultWhatsAppMessage is published when the WhatsApp settings carry no message.
const DefaultWhatsAppMessage = "Hello! I would like to know more about your gym."

// FieldRule maps one public field from the first present source field.
type FieldRule struct {
	Target  string
	Sources []string
	Default any
}

var ProgramRules = []FieldRule{
	{Target: "id", Sources: []string{"id"}, Default: ""},
	{Target: "title", Sources: []string{"title", "name"}, Default: ""},
	{Target: "description", Sources: []string{"description"}, Default: ""},
	{Target: "icon", Sources: []string{"icon"}, Default: ""},
	{Target: "image", Sources: []string{"image", "imageUrl"}, Default: ""},
}

var GalleryRules = []FieldRule{
	{Target: "id", Sources: []string{"id"}, Default: ""},
	{Target: "url", Sources: []string{"url", "imageUrl"}, Default: ""},
	{Target: "alt", Sources: []string{"alt", "title"}, Default: ""},
	{Target: "category", Sources: []string{"category"}, Default: "general"},
}

var TestimonialRules = []FieldRule{
	{Target: "id", Sources: []string{"id"}, Default: ""},
	{Target: "name", Sources: []string{"name"}, Default: ""},
	{Target: "role", Sources: []string{"role", "position"}, Default: ""},
	{Target: "content", Sources: []string{"content", "message"}, Default: ""},
	{Target: "image", Sources: []string{"image", "imageUrl"}, Default: ""},
	{Target: "rating", Sources: []string{"rating"}, Default: 5},
}

var ContactRules = []FieldRule{
	{Target: "whatsappNumber", Sources: []string{"phoneNumber", "number"}, Default: ""},
	{Target: "whatsappMessage", Sources: []string{"message"}, Default: DefaultWhatsAppMessage},
}

var SocialRules = []FieldRule{
	{Target: "facebook", Sources: []string{"facebook"}, Default: ""},
	{Target: "instagram", Sources: []string{"instagram"}, Default: ""},
	{Target: "twitter", Sources: []string{"twitter"}, Default: ""},
	{Target: "youtube", Sources: []string{"youtube"}, Default: ""},
}

// Project builds one public record. A nil record yields all defaults.
func Project(rec store.Record, rules []FieldRule) map[string]any {
	out := make(map[string]any, len(rules))
	for _, rule := range rules {
		out[rule.Target] = rule.Default
		for _, src := range rule.Sources {
			if v, ok := rec[src]; ok && present(v) {
				out[rule.Target] = v
				break
			}
		}
	}
	return out
}

// ProjectAll projects every record, keeping order. Never returns nil.
func ProjectAll(recs []store.Record, rules []FieldRule) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Project(rec, rules))
	}
	return out
}

// present treats nil and zero scalars ("", 0, false) as missing. Empty arrays and objects
// still count as present.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return true
	}
	return !rv.IsZero()
}
