package attribute

import (
	"encoding/xml"
	"fmt"
)

// Value is one selected custom-attribute value decoded from a customer's
// attribute blob.
type Value struct {
	AttributeID string
	ValueID     string
}

// Parser decodes the CustomCustomerAttributes blob.
type Parser interface {
	Parse(blob string) ([]Value, error)
}

type xmlParser struct{}

// NewParser returns the parser for the XML attribute encoding:
//
//	<Attributes>
//	  <CustomerAttribute ID="...">
//	    <CustomerAttributeValue ID="..."/>
//	  </CustomerAttribute>
//	</Attributes>
func NewParser() Parser {
	return &xmlParser{}
}

type attributesDoc struct {
	XMLName    xml.Name       `xml:"Attributes"`
	Attributes []attributeDoc `xml:"CustomerAttribute"`
}

type attributeDoc struct {
	ID     string              `xml:"ID,attr"`
	Values []attributeValueDoc `xml:"CustomerAttributeValue"`
}

type attributeValueDoc struct {
	ID string `xml:"ID,attr"`
}

func (p *xmlParser) Parse(blob string) ([]Value, error) {
	if blob == "" {
		return nil, nil
	}

	var doc attributesDoc
	if err := xml.Unmarshal([]byte(blob), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse customer attributes: %w", err)
	}

	var values []Value
	for _, attr := range doc.Attributes {
		for _, v := range attr.Values {
			values = append(values, Value{AttributeID: attr.ID, ValueID: v.ID})
		}
	}
	return values, nil
}
