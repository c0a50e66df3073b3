package views

import "strings"

type ButtonVariant string

const (
	ButtonVariantDefault ButtonVariant = ""
	ButtonVariantOutline ButtonVariant = "outline"
)

type ButtonProps struct {
	Variant ButtonVariant
	Class   string
}

func buttonClasses(props ButtonProps) string {
	classes := []string{"cursor-pointer inline-flex items-center justify-center whitespace-nowrap rounded-md text-sm font-medium h-8 px-3"}

	switch props.Variant {
	case ButtonVariantOutline:
		classes = append(classes, "border border-neutral-200 bg-white hover:bg-neutral-200 text-black")
	default:
		classes = append(classes, "bg-black text-white hover:bg-black/90")
	}

	if props.Class != "" {
		classes = append(classes, props.Class)
	}

	return strings.Join(classes, " ")
}
