package core

import (
	"strconv"

	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/beevik/etree"
)

// DataTableMeta carries the physical description written alongside an
// inferred attribute list.
type DataTableMeta struct {
	EntityName  string
	ObjectName  string
	Size        int64
	Delimiter   rune
	Quote       rune
	HeaderLines int
}

// BuildDataTable renders a profile as an EML dataTable element. The result
// loads back through schema.LoadTable with the inferred types intact.
func BuildDataTable(p *TableProfile, meta DataTableMeta) *etree.Element {
	if meta.Delimiter == 0 {
		meta.Delimiter = schema.DefaultDelimiter
	}
	if meta.Quote == 0 {
		meta.Quote = schema.DefaultQuote
	}
	if meta.HeaderLines < 1 {
		meta.HeaderLines = schema.DefaultHeaderLines
	}

	dt := etree.NewElement("dataTable")
	addText(dt, "entityName", meta.EntityName)

	physical := dt.CreateElement("physical")
	addText(physical, "objectName", meta.ObjectName)
	if meta.Size > 0 {
		size := addText(physical, "size", strconv.FormatInt(meta.Size, 10))
		size.CreateAttr("unit", "byte")
	}
	text := physical.CreateElement("dataFormat").CreateElement("textFormat")
	addText(text, "numHeaderLines", strconv.Itoa(meta.HeaderLines))
	addText(text, "recordDelimiter", `\n`)
	addText(text, "attributeOrientation", "column")
	simple := text.CreateElement("simpleDelimited")
	addText(simple, "fieldDelimiter", delimiterText(meta.Delimiter))
	addText(simple, "quoteCharacter", string(meta.Quote))

	dt.AddChild(BuildAttributeList(p))
	addText(dt, "numberOfRecords", strconv.Itoa(p.Rows))
	return dt
}

// BuildAttributeList renders the attributeList for a profile.
func BuildAttributeList(p *TableProfile) *etree.Element {
	list := etree.NewElement("attributeList")
	for _, col := range p.Columns {
		list.AddChild(buildAttribute(col))
	}
	return list
}

func buildAttribute(col ColumnProfile) *etree.Element {
	attr := etree.NewElement("attribute")
	addText(attr, "attributeName", col.Name)
	addText(attr, "attributeDefinition", col.Name)

	scale := attr.CreateElement("measurementScale")
	v := col.Verdict
	switch v.Type {
	case schema.Categorical:
		enum := scale.CreateElement("nominal").CreateElement("nonNumericDomain").CreateElement("enumeratedDomain")
		enum.CreateAttr("enforced", "yes")
		for _, code := range v.Codes {
			def := enum.CreateElement("codeDefinition")
			addText(def, "code", code)
			addText(def, "definition", code)
		}
	case schema.Numerical:
		ratio := scale.CreateElement("ratio")
		ratio.CreateElement("unit").CreateElement("standardUnit").SetText("dimensionless")
		numberType := v.NumberType
		if numberType == "" {
			numberType = schema.NumberReal
		}
		addText(ratio.CreateElement("numericDomain"), "numberType", string(numberType))
	case schema.DateTime:
		dt := scale.CreateElement("dateTime")
		addText(dt, "formatString", v.DateTimeFormat)
	default:
		domain := scale.CreateElement("nominal").CreateElement("nonNumericDomain").CreateElement("textDomain")
		addText(domain, "definition", col.Name)
	}

	if col.MissingCode != "" {
		mv := attr.CreateElement("missingValueCode")
		addText(mv, "code", col.MissingCode)
		addText(mv, "codeExplanation", "Missing value")
	}
	return attr
}

func addText(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

func delimiterText(r rune) string {
	if r == '\t' {
		return `\t`
	}
	return string(r)
}

// WriteXML serialises an element with two-space indentation.
func WriteXML(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	doc.Indent(2)
	return doc.WriteToString()
}
