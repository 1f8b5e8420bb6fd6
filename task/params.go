package task

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/schema"
	"sort"

	"github.com/samber/lo"
)

// paramBlock checks the keys and value shapes of a nested block and returns
// the well-typed entries.
func paramBlock(desc Description, block string, c *collector) (map[string]domain.Value, bool) {
	v, ok := desc[block]
	if !ok {
		return nil, false
	}
	fields, ok := v.Map()
	if !ok {
		return nil, false
	}
	known, _ := schema.ParamKeys(block)
	if unknown, _ := lo.Difference(lo.Keys(fields), known); len(unknown) > 0 {
		sort.Strings(unknown)
		c.add(&errors.UnknownKeyError{Scope: block, Keys: unknown})
	}
	out := make(map[string]domain.Value, len(fields))
	for _, key := range lo.Intersect(known, lo.Keys(fields)) {
		val := fields[key]
		expected, _ := schema.ParamType(block, key)
		if !expected.Allows(val.Kind()) {
			c.add(&errors.KeyTypeError{Key: block + "." + key, Expected: expected.String(), Actual: val.Kind().String()})
			continue
		}
		out[key] = val
	}
	return out, true
}

func spectParams(desc Description, c *collector) domain.SpectParams {
	fields, ok := paramBlock(desc, schema.KeySpectParams, c)
	if !ok {
		return domain.SpectParams{}.Resolved()
	}

	var p domain.SpectParams
	p.Ref, _ = fields["ref"].Str()
	if n, ok := fields["nperseg"].Int(); ok {
		p.Nperseg = int(n)
	}
	if n, ok := fields["noverlap"].Int(); ok {
		p.Noverlap = int(n)
	}
	if v, ok := fields["freq_cutoffs"]; ok {
		cutoffs, ok := v.Ints()
		switch {
		case !ok:
			c.add(&errors.KeyTypeError{Key: schema.KeySpectParams + ".freq_cutoffs", Expected: "list of int", Actual: v.String()})
		case len(cutoffs) == 2 && cutoffs[0] >= cutoffs[1]:
			c.add(&errors.ParamValueError{Field: schema.KeySpectParams + ".freq_cutoffs", Rule: "low < high"})
		default:
			p.FreqCutoffs = cutoffs
		}
	}
	p.Window, _ = fields["window"].Str()
	p.FilterFunc, _ = fields["filter_func"].Str()
	p.SpectFunc, _ = fields["spect_func"].Str()
	p.LogTransform, _ = fields["log_transform_spect"].Bool()
	p.SylSpectWidth, _ = fields["syl_spect_width"].Number()

	if p.Ref == "" && p.Nperseg == 0 && len(fields) > 0 && !onlyWidth(fields) {
		c.add(&errors.ParamValueError{Field: schema.KeySpectParams + ".nperseg", Rule: "required without ref"})
	}
	resolved := p.Resolved()
	addStructErrors(validate.Struct(resolved), schema.KeySpectParams, c)
	return resolved
}

func onlyWidth(fields map[string]domain.Value) bool {
	_, ok := fields["syl_spect_width"]
	return ok && len(fields) == 1
}

func segmentParams(desc Description, c *collector) (domain.SegmentParams, bool) {
	fields, ok := paramBlock(desc, schema.KeySegmentParams, c)
	if !ok {
		return domain.SegmentParams{}, false
	}
	p := domain.DefaultSegmentParams()
	for key, dst := range map[string]*float64{
		"threshold":      &p.Threshold,
		"min_syl_dur":    &p.MinSylDur,
		"min_silent_dur": &p.MinSilentDur,
	} {
		if f, ok := fields[key].Number(); ok {
			*dst = f
		}
	}
	addStructErrors(validate.Struct(p), schema.KeySegmentParams, c)
	return p, true
}
