package plate

// LayoutPlates runs the whole layout: experiments are built into matrices,
// split to fit the plate geometry and packed onto plates by p. A nil p uses
// [DefaultPacker].
func LayoutPlates(in Experiments, p Packer) ([]*Plate, error) {
	matrices, err := BuildExperiments(in)
	if err != nil {
		return nil, err
	}
	spec, _ := SpecFor(in.MaxWellCount)
	if p == nil {
		p = DefaultPacker
	}
	return p.Pack(Split(matrices, spec), spec)
}
