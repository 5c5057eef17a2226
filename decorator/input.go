package decorator

import (
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// buildInputObject builds the input object of struct t, used when t appears
// as an argument or inside another input object. Only property members can be
// input fields.
func (r *Registry) buildInputObject(t reflect.Type) (*graphql.InputObject, error) {
	if obj, ok := r.inputs[t]; ok {
		return obj, nil
	}

	c, err := r.classMetadata(t)
	if err != nil {
		return nil, err
	}
	if c.config.inputName() == "" {
		return nil, fmt.Errorf("bad input type %s: should have a name", t)
	}
	members, err := c.chain(r.fieldName)
	if err != nil {
		return nil, fmt.Errorf("bad input type %s: %w", t, err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("bad input type %s: %w", t, ErrNoFields)
	}

	fields := graphql.InputObjectConfigFieldMap{}
	obj := graphql.NewInputObject(c.config.ToInputObjectConfig(fields))
	r.inputs[t] = obj
	r.journal = append(r.journal, builtType{typ: t, input: true})

	for _, m := range members {
		if m.kind != propertyMember {
			return nil, fmt.Errorf("bad input type %s: method %s cannot be an input field", t, m.name)
		}
		typ, err := m.config.inputType(r, m.field.Type)
		if err != nil {
			return nil, fmt.Errorf("bad input type %s: field %s: %w", t, m.name, err)
		}
		fields[r.fieldName(m.MemberMetadata)] = m.config.ToInputField(typ)
	}
	if err := obj.Error(); err != nil {
		return nil, fmt.Errorf("bad input type %s: %w", t, err)
	}

	r.log().Debug().Str("type", obj.Name()).Stringer("goType", t).Int("fields", len(fields)).Msg("built input object type")
	return obj, nil
}
