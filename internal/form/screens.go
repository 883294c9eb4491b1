package form

import "github.com/iwvelando/simple-finance/pkg/tvm"

// Title is shown at the top of every screen.
const Title = "Simple Finance"

// InputField describes one text field on a screen.
type InputField struct {
	Field       tvm.Field `json:"field"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder"`
	Optional    bool      `json:"optional,omitempty"`
}

// Screen describes one calculator tab: the text fields it collects and the
// single value it displays.
type Screen struct {
	Output      tvm.Field    `json:"output"`
	Tab         string       `json:"tab"`
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Inputs      []InputField `json:"inputs"`
	OutputLabel string       `json:"outputLabel"`
}

var icons = map[tvm.Field]string{
	tvm.FieldFutureValue:     "dollarsign.circle",
	tvm.FieldPresentValue:    "banknote",
	tvm.FieldPeriodicPayment: "creditcard",
	tvm.FieldInterestRate:    "percent",
	tvm.FieldNumberOfPeriods: "calendar",
}

// FieldLabel returns the form label for field, e.g. "Interest Rate (I/Y):".
func FieldLabel(field tvm.Field) string {
	return field.Name() + " (" + field.Label() + "):"
}

// ScreenFor returns the screen that solves for field.
func ScreenFor(field tvm.Field) (Screen, bool) {
	if !field.Valid() {
		return Screen{}, false
	}

	screen := Screen{
		Output:      field,
		Tab:         field.Label(),
		Icon:        icons[field],
		Title:       Title,
		OutputLabel: FieldLabel(field),
	}
	for _, required := range tvm.Required(field) {
		screen.Inputs = append(screen.Inputs, InputField{
			Field:       required,
			Label:       FieldLabel(required),
			Placeholder: required.Label(),
			// The rate screen predates payments; a blank payment means none.
			Optional: field == tvm.FieldInterestRate && required == tvm.FieldPeriodicPayment,
		})
	}
	return screen, true
}

// Screens returns the five calculator screens in tab order.
func Screens() []Screen {
	screens := make([]Screen, 0, len(tvm.Fields()))
	for _, field := range tvm.Fields() {
		screen, _ := ScreenFor(field)
		screens = append(screens, screen)
	}
	return screens
}
