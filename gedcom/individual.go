package gedcom

import "strings"

// IsIndividual reports whether e is an individual record.
func (e *Element) IsIndividual() bool {
	return e != nil && e.Level == 0 && e.Tag == TagIndividual
}

// IsFamily reports whether e is a family record.
func (e *Element) IsFamily() bool {
	return e != nil && e.Level == 0 && e.Tag == TagFamily
}

// Name returns the given and family name of an individual from its first
// NAME line. GIVN and SURN sub-lines take precedence over the slash-delimited
// form "Given /Family/". Either part may be empty.
func (e *Element) Name() (given, family string) {
	name := e.Child(TagName)
	if name == nil {
		return "", ""
	}

	value := name.Value
	if before, after, ok := strings.Cut(value, "/"); ok {
		given = before
		family, _, _ = strings.Cut(after, "/")
	} else {
		given = value
	}

	if g := name.Child(TagGiven); g != nil {
		given = g.Value
	}
	if s := name.Child(TagSurname); s != nil {
		family = s.Value
	}
	return strings.TrimSpace(given), strings.TrimSpace(family)
}

// Gender returns the SEX value of an individual, usually "M" or "F", or ""
// when absent.
func (e *Element) Gender() string {
	sex := e.Child(TagSex)
	if sex == nil {
		return ""
	}
	return strings.TrimSpace(sex.Value)
}

// BirthPlace returns the PLAC value of the first BIRT event, or "".
func (e *Element) BirthPlace() string {
	birth := e.Child(TagBirth)
	if birth == nil {
		return ""
	}
	place := birth.Child(TagPlace)
	if place == nil {
		return ""
	}
	return place.Value
}

// Parents returns the HUSB and WIFE records of every family the individual
// is a child of. Pointers that resolve to nothing are skipped; pointers that
// resolve to non-individual records are returned as is.
func (d *Document) Parents(e *Element) []*Element {
	var out []*Element
	for _, fam := range d.families(e, TagFamChild) {
		out = append(out, d.members(fam, TagHusband, TagWife)...)
	}
	return out
}

// Spouses returns the partners of the individual in every family where it is
// a spouse, excluding the individual itself.
func (d *Document) Spouses(e *Element) []*Element {
	var out []*Element
	for _, fam := range d.families(e, TagFamSpouse) {
		for _, m := range d.members(fam, TagHusband, TagWife) {
			if m != e {
				out = append(out, m)
			}
		}
	}
	return out
}

// Children returns the CHIL records of every family the individual is a
// spouse in.
func (d *Document) Children(e *Element) []*Element {
	var out []*Element
	for _, fam := range d.families(e, TagFamSpouse) {
		out = append(out, d.members(fam, TagChild)...)
	}
	return out
}

// families resolves the FAMC or FAMS links of an individual.
func (d *Document) families(e *Element, linkTag string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, link := range e.ChildrenWithTag(linkTag) {
		if fam, ok := d.byPointer[strings.TrimSpace(link.Value)]; ok && fam.IsFamily() {
			out = append(out, fam)
		}
	}
	return out
}

// members resolves the family lines with the given tags.
func (d *Document) members(fam *Element, tags ...string) []*Element {
	var out []*Element
	for _, c := range fam.Children {
		for _, tag := range tags {
			if c.Tag != tag {
				continue
			}
			if m, ok := d.byPointer[strings.TrimSpace(c.Value)]; ok {
				out = append(out, m)
			}
		}
	}
	return out
}
