package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// ABI extraction
	AbiInfo                Code = 1000
	AbiNamedParamFallback  Code = 1001
	AbiUnusedEvent         Code = 1002
	AbiUnknownEmit         Code = 1003
	AbiAnnotationTarget    Code = 1004
	AbiDuplicateAnnotation Code = 1005
	AbiEmptyEvent          Code = 1006
	AbiBadSelector         Code = 1007

	// Routing synthesis
	DspInfo            Code = 2000
	DspReplacedRouting Code = 2001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		AbiInfo:                "ABI information",
		AbiNamedParamFallback:  "named parameter could not be parsed, using raw text as type",
		AbiUnusedEvent:         "event is declared but never emitted",
		AbiUnknownEmit:         "@emit names an undeclared event",
		AbiAnnotationTarget:    "annotation is not allowed on this declaration",
		AbiDuplicateAnnotation: "annotation repeated on one declaration",
		AbiEmptyEvent:          "event declares no fields",
		AbiBadSelector:         "@selector needs one 4-byte hex value",
		DspInfo:                "Routing information",
		DspReplacedRouting:     "existing routing procedure replaced",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ABI%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DSP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
