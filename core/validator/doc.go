// Package validator validates request structs from `validate` field tags and
// plugs into the pipeline Validation behavior.
//
// # Tags
//
// Rules are separated by semicolons. Parameters follow a colon and are
// comma-separated:
//
//	type CreateSale struct {
//		StoreID  string   `validate:"required;uuid"`
//		Channel  string   `validate:"in:web,pos,phone"`
//		Quantity int      `validate:"between:1,99"`
//		Items    []string `validate:"min:1;max:50"`
//		Internal string   `validate:"-"`
//	}
//
//	if err := validator.ValidateStruct(&cmd); err != nil {
//		for _, e := range err.(validator.ValidationErrors) {
//			fmt.Println(e.Field, e.Message)
//		}
//	}
//
// Nested structs and non-nil struct pointers without a tag are walked, and
// their fields are reported with a dotted path (Shipping.City).
//
// Built-in rules: required, min, max, len, between, email, uuid (optionally
// uuid:4), alphanum, in, not_in, prefix, regex (pattern[,description]),
// positive, nonzero. Add more with RegisterValidator.
//
// # Translations
//
// Each ValidationError carries a TranslationKey such as "validation.required"
// and the values needed to render a localized message.
//
// # Pipeline integration
//
// Tags adapts the rule registry to a pipeline.Validator:
//
//	d := pipeline.NewDispatcher(pipeline.WithBehaviors(
//		pipeline.Validation(validator.Tags(), saleRules),
//	))
//
// Value requests are copied before inspection, so both CreateSale{} and
// &CreateSale{} are validated.
package validator
