package manifest

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"abiforge/internal/abitype"
)

const indent = "    "

// RenderAbiTS renders the typed ABI constant module for one class.
func RenderAbiTS(abi *ClassABI) string {
	var b strings.Builder
	b.WriteString("import { ABIDataTypes, BitcoinAbiTypes, OP_NET_ABI } from 'opnet';\n")
	b.WriteString("import type { BitcoinInterfaceAbi } from 'opnet';\n\n")

	fmt.Fprintf(&b, "export const %sEvents = [\n", abi.Class)
	for _, ev := range abi.Events {
		b.WriteString(indent + "{\n")
		fmt.Fprintf(&b, "%s%sname: %s,\n", indent, indent, tsString(ev.Name))
		writeParams(&b, "values", ev.Values)
		fmt.Fprintf(&b, "%s%stype: BitcoinAbiTypes.Event,\n", indent, indent)
		b.WriteString(indent + "},\n")
	}
	b.WriteString("];\n\n")

	fmt.Fprintf(&b, "export const %sAbi = [\n", abi.Class)
	for _, fn := range abi.Functions {
		b.WriteString(indent + "{\n")
		fmt.Fprintf(&b, "%s%sname: %s,\n", indent, indent, tsString(fn.Name))
		if fn.IsView() {
			fmt.Fprintf(&b, "%s%sconstant: true,\n", indent, indent)
		}
		if fn.Payable {
			fmt.Fprintf(&b, "%s%spayable: true,\n", indent, indent)
		}
		writeParams(&b, "inputs", fn.Inputs)
		writeParams(&b, "outputs", fn.Outputs)
		fmt.Fprintf(&b, "%s%stype: BitcoinAbiTypes.Function,\n", indent, indent)
		b.WriteString(indent + "},\n")
	}
	fmt.Fprintf(&b, "%s...%sEvents,\n", indent, abi.Class)
	b.WriteString(indent + "...OP_NET_ABI,\n")
	b.WriteString("] as BitcoinInterfaceAbi;\n\n")
	fmt.Fprintf(&b, "export default %sAbi;\n", abi.Class)
	return b.String()
}

func writeParams(b *strings.Builder, key string, ps []Param) {
	if len(ps) == 0 {
		fmt.Fprintf(b, "%s%s%s: [],\n", indent, indent, key)
		return
	}
	fmt.Fprintf(b, "%s%s%s: [\n", indent, indent, key)
	for _, p := range ps {
		fmt.Fprintf(b, "%s%s%s{ name: %s, type: ABIDataTypes.%s },\n", indent, indent, indent, tsString(p.Name), p.Type)
	}
	fmt.Fprintf(b, "%s%s],\n", indent, indent)
}

// RenderDTS renders the declaration-only type module for one class.
func RenderDTS(abi *ClassABI) string {
	var b strings.Builder

	var imports []string
	addImport := func(name string) {
		if !slices.Contains(imports, name) {
			imports = append(imports, name)
		}
	}
	scan := func(ps []Param) {
		for _, p := range ps {
			switch p.Hint.Kind {
			case abitype.HintAddress:
				addImport("Address")
			case abitype.HintAddressMap:
				addImport("AddressMap")
			case abitype.HintExtendedAddressMap:
				addImport("ExtendedAddressMap")
			case abitype.HintSchnorrSignature:
				addImport("SchnorrSignature")
			}
		}
	}
	for _, ev := range abi.Events {
		scan(ev.Values)
	}
	for _, fn := range abi.Functions {
		scan(fn.Inputs)
		scan(fn.Outputs)
	}
	slices.Sort(imports)
	if len(imports) > 0 {
		fmt.Fprintf(&b, "import { %s } from '@btc-vision/transaction';\n", strings.Join(imports, ", "))
	}
	b.WriteString("import { CallResult, OPNetEvent, IOP_NETContract } from 'opnet';\n\n")

	b.WriteString("// ------------------------------------------------------------------\n")
	b.WriteString("// Event Definitions\n")
	b.WriteString("// ------------------------------------------------------------------\n")
	for _, ev := range abi.Events {
		fmt.Fprintf(&b, "export type %s = {\n", eventTypeName(ev.Name))
		for _, v := range ev.Values {
			fmt.Fprintf(&b, "%sreadonly %s: %s;\n", indent, tsKey(v.Name), v.Hint)
		}
		b.WriteString("};\n")
	}
	b.WriteString("\n")

	b.WriteString("// ------------------------------------------------------------------\n")
	b.WriteString("// Call Results\n")
	b.WriteString("// ------------------------------------------------------------------\n")
	for _, fn := range abi.Functions {
		fmt.Fprintf(&b, "export type %s = CallResult<\n", resultTypeName(fn.Name))
		if len(fn.Outputs) == 0 {
			b.WriteString(indent + "{},\n")
		} else {
			b.WriteString(indent + "{\n")
			for _, o := range fn.Outputs {
				fmt.Fprintf(&b, "%s%s%s: %s;\n", indent, indent, tsKey(o.Name), o.Hint)
			}
			b.WriteString(indent + "},\n")
		}
		fmt.Fprintf(&b, "%sOPNetEvent<%s>[]\n", indent, emittedUnion(fn, abi.Events))
		b.WriteString(">;\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "export interface I%s extends IOP_NETContract {\n", abi.Class)
	for _, fn := range abi.Functions {
		args := make([]string, len(fn.Inputs))
		for i, in := range fn.Inputs {
			args[i] = fmt.Sprintf("%s: %s", tsIdent(in.Name), in.Hint)
		}
		fmt.Fprintf(&b, "%s%s(%s): Promise<%s>;\n", indent, tsKey(fn.Name), strings.Join(args, ", "), resultTypeName(fn.Name))
	}
	b.WriteString("}\n")
	return b.String()
}

// emittedUnion lists the event payload types fn may emit, or "never".
func emittedUnion(fn Function, events []Event) string {
	var names []string
	for _, ev := range events {
		if slices.Contains(fn.Emits, ev.Name) {
			names = append(names, eventTypeName(ev.Name))
		}
	}
	if len(names) == 0 {
		return "never"
	}
	return strings.Join(names, " | ")
}

func eventTypeName(name string) string {
	return upperFirst(name) + "Event"
}

func resultTypeName(name string) string {
	return upperFirst(name)
}

var tsEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// tsString renders s as a single-quoted TS string literal.
func tsString(s string) string {
	return "'" + tsEscaper.Replace(s) + "'"
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// tsKey keeps identifiers bare and quotes anything else.
func tsKey(s string) string {
	if isIdent(s) {
		return s
	}
	return tsString(s)
}

// tsIdent maps s onto a parameter identifier.
func tsIdent(s string) string {
	if isIdent(s) {
		return s
	}
	var out []rune
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			r = '_'
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
