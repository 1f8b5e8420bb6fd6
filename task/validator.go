package task

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/features"
	"birdsong-lab/schema"
	stdErrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// Report task keys, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("msgpack"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// hyperRules carries the value rules of hyperparameters. A nil field was not
// given and falls back to the classifier default; a given value must pass.
type hyperRules struct {
	K         *int     `msgpack:"k" validate:"omitempty,gt=0"`
	C         *float64 `msgpack:"C" validate:"omitempty,gt=0"`
	Gamma     *float64 `msgpack:"gamma" validate:"omitempty,gt=0"`
	Epochs    *int     `msgpack:"epochs" validate:"omitempty,gt=0"`
	BatchSize *int     `msgpack:"batch size" validate:"omitempty,gt=0"`
}

func intRule(spec domain.ModelSpec, key string) *int {
	if _, ok := spec.Hyperparameters[key]; !ok {
		return nil
	}
	v := spec.IntParam(key, 0)
	return &v
}

func floatRule(spec domain.ModelSpec, key string) *float64 {
	if _, ok := spec.Hyperparameters[key]; !ok {
		return nil
	}
	v := spec.FloatParam(key, 0)
	return &v
}

type collector struct {
	violations []error
}

func (c *collector) add(err error) {
	c.violations = append(c.violations, err)
}

func (c *collector) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &errors.ValidationError{Violations: c.violations}
}

// Validate checks a description against the registry for phase and returns
// every violation found in a single *errors.ValidationError.
func Validate(desc Description, phase domain.Phase) (ValidatedTask, error) {
	required, err := schema.RequiredKeys(phase)
	if err != nil {
		return ValidatedTask{}, err
	}
	optional, err := schema.OptionalKeys(phase)
	if err != nil {
		return ValidatedTask{}, err
	}

	c := &collector{}
	present := desc.Keys()

	if missing, _ := lo.Difference(required, present); len(missing) > 0 {
		sort.Strings(missing)
		c.add(&errors.MissingKeyError{Keys: missing})
	}
	if unknown, _ := lo.Difference(present, append(required, optional...)); len(unknown) > 0 {
		sort.Strings(unknown)
		c.add(&errors.UnknownKeyError{Keys: unknown})
	}
	for _, key := range present {
		expected, err := schema.KeyType(phase, key)
		if err != nil {
			continue
		}
		if v := desc[key]; !expected.Allows(v.Kind()) {
			c.add(&errors.KeyTypeError{Key: key, Expected: expected.String(), Actual: v.Kind().String()})
		}
	}

	vt := ValidatedTask{phase: phase, raw: desc.Clone()}
	switch phase {
	case domain.PhaseExtract:
		t := buildExtract(desc, c)
		vt.extract = &t
	case domain.PhasePredict:
		t := buildPredict(desc, c)
		vt.predict = &t
	case domain.PhaseSelect:
		t := buildSelect(desc, c)
		vt.sel = &t
	}

	if err := c.err(); err != nil {
		return ValidatedTask{}, err
	}
	return vt, nil
}

// ValidateModelSpec applies the model block rules to an already typed spec,
// such as one restored from a model file.
func ValidateModelSpec(spec domain.ModelSpec) error {
	block := map[string]domain.Value{
		schema.KeyModelName: domain.StringValue(string(spec.Kind)),
	}
	if len(spec.FeatureListIndices) > 0 {
		block[schema.KeyFeatureIndices] = domain.ListValue(lo.Map(spec.FeatureListIndices, func(i int, _ int) domain.Value {
			return domain.IntValue(int64(i))
		})...)
	}
	if spec.FeatureGroup != "" && spec.FeatureGroup != schema.ImplicitFeatureGroup(spec.Kind) {
		block[schema.KeyFeatureGroup] = domain.StringValue(spec.FeatureGroup)
	}
	if len(spec.Hyperparameters) > 0 {
		block[schema.KeyHyperparams] = domain.MapValue(spec.Hyperparameters)
	}
	c := &collector{}
	validateModelBlock(0, domain.MapValue(block), c)
	return c.err()
}

func stringKey(desc Description, key string) string {
	s, _ := desc[key].Str()
	return s
}

func stringList(desc Description, key string, c *collector) []string {
	v, ok := desc[key]
	if !ok {
		return nil
	}
	items, ok := v.List()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.Str()
		if !ok {
			c.add(&errors.KeyTypeError{Key: fmt.Sprintf("%s[%d]", key, i), Expected: "string", Actual: item.Kind().String()})
			continue
		}
		out = append(out, s)
	}
	return out
}

// nonEmptyList reports a list key given as []. Other shapes are type errors.
func nonEmptyList(desc Description, key string, c *collector) {
	if items, ok := desc[key].List(); ok && len(items) == 0 {
		c.add(&errors.ParamValueError{Field: key, Rule: "non-empty"})
	}
}

func checkFormat(desc Description, c *collector) domain.FileFormat {
	raw, ok := desc[schema.KeyFileFormat].Str()
	if !ok {
		return ""
	}
	f := domain.FileFormat(raw)
	if !lo.Contains(schema.ValidFormats(), f) {
		c.add(&errors.UnsupportedFormatError{Format: raw})
	}
	return f
}

// labelset accepts "iabc" (one label per character) or a list of labels.
func labelset(desc Description) []string {
	v, ok := desc[schema.KeyLabelset]
	if !ok {
		return nil
	}
	if s, ok := v.Str(); ok {
		return lo.Uniq(lo.Map([]rune(s), func(r rune, _ int) string { return string(r) }))
	}
	items, _ := v.List()
	return lo.Uniq(lo.FilterMap(items, func(item domain.Value, _ int) (string, bool) {
		if s, ok := item.Str(); ok {
			return s, true
		}
		if i, ok := item.Int(); ok {
			return fmt.Sprintf("%d", i), true
		}
		return "", false
	}))
}

func buildExtract(desc Description, c *collector) ExtractTask {
	t := ExtractTask{
		BirdID:        stringKey(desc, schema.KeyBirdID),
		FileFormat:    checkFormat(desc, c),
		DataDirs:      stringList(desc, schema.KeyDataDirs, c),
		OutputDir:     stringKey(desc, schema.KeyOutputDir),
		Labelset:      labelset(desc),
		SegmentParams: domain.DefaultSegmentParams(),
	}
	if _, ok := desc[schema.KeyLabelset]; ok && len(t.Labelset) == 0 {
		c.add(&errors.ParamValueError{Field: schema.KeyLabelset, Rule: "non-empty"})
	}
	nonEmptyList(desc, schema.KeyDataDirs, c)

	t.SpectParams = spectParams(desc, c)
	if seg, ok := segmentParams(desc, c); ok {
		t.SegmentParams = seg
		t.SegmentParamsSet = true
	}

	if v, ok := desc[schema.KeyFeatureGroup]; ok {
		t.FeatureGroups, _ = v.Strings()
	}
	t.FeatureList = stringList(desc, schema.KeyFeatureList, c)
	if len(t.FeatureGroups) == 0 && len(t.FeatureList) == 0 {
		t.FeatureGroups = []string{features.GroupKNN}
	}
	for _, g := range t.FeatureGroups {
		if !features.IsGroup(g) {
			c.add(&errors.ParamValueError{Field: schema.KeyFeatureGroup, Rule: fmt.Sprintf("known feature group, got %q", g)})
		}
	}
	for _, f := range t.FeatureList {
		if !features.IsFeature(f) {
			c.add(&errors.ParamValueError{Field: schema.KeyFeatureList, Rule: fmt.Sprintf("known feature, got %q", f)})
		}
	}
	if features.NeedsFixedWidth(t.FeatureGroups, t.FeatureList) && t.SpectParams.SylSpectWidth <= 0 {
		c.add(&errors.ParamValueError{Field: schema.KeySpectParams + ".syl_spect_width", Rule: "required by flatwindow features"})
	}
	return t
}

func buildPredict(desc Description, c *collector) PredictTask {
	nonEmptyList(desc, schema.KeyDataDirs, c)
	return PredictTask{
		FileFormat: checkFormat(desc, c),
		DataDirs:   stringList(desc, schema.KeyDataDirs, c),
		OutputDir:  stringKey(desc, schema.KeyOutputDir),
		ModelFile:  stringKey(desc, schema.KeyModelFile),
		BirdID:     stringKey(desc, schema.KeyBirdID),
	}
}

func buildSelect(desc Description, c *collector) SelectTask {
	t := SelectTask{
		FeatureFile:   stringKey(desc, schema.KeyFeatureFile),
		OutputDir:     stringKey(desc, schema.KeyOutputDir),
		NumReplicates: 1,
	}
	counts := []struct {
		key string
		dst *int
	}{
		{schema.KeyNumReplicates, &t.NumReplicates},
		{schema.KeyNumTrain, &t.NumTrainSamples},
		{schema.KeyNumTest, &t.NumTestSamples},
	}
	for _, count := range counts {
		key, dst := count.key, count.dst
		i, ok := desc[key].Int()
		if !ok {
			continue
		}
		if i <= 0 {
			c.add(&errors.ParamValueError{Field: key, Rule: "gt=0"})
			continue
		}
		*dst = int(i)
	}

	blocks, _ := desc[schema.KeyModels].List()
	if _, ok := desc[schema.KeyModels]; ok && len(blocks) == 0 {
		c.add(&errors.ParamValueError{Field: schema.KeyModels, Rule: "non-empty"})
	}
	for i, block := range blocks {
		if spec, ok := validateModelBlock(i, block, c); ok {
			t.Models = append(t.Models, spec)
		}
	}
	return t
}

// validateModelBlock checks one entry of models and returns its typed spec.
func validateModelBlock(index int, block domain.Value, c *collector) (domain.ModelSpec, bool) {
	fields, ok := block.Map()
	if !ok {
		c.add(&errors.KeyTypeError{Key: fmt.Sprintf("%s[%d]", schema.KeyModels, index), Expected: "map", Actual: block.Kind().String()})
		return domain.ModelSpec{}, false
	}

	name, _ := fields[schema.KeyModelName].Str()
	kind := domain.ModelKind(name)
	if !schema.IsValidModel(kind) {
		c.add(&errors.UnknownModelError{Index: index, Name: name})
		return domain.ModelSpec{}, false
	}

	before := len(c.violations)
	validKeys, _ := schema.ValidModelKeys(kind)
	unknown, _ := lo.Difference(lo.Keys(fields), validKeys)

	spec := domain.ModelSpec{
		Kind:            kind,
		FeatureGroup:    schema.ImplicitFeatureGroup(kind),
		Hyperparameters: map[string]domain.Value{},
	}
	for key, v := range fields {
		expected, err := schema.ModelKeyType(kind, key)
		if err != nil {
			continue
		}
		if !expected.Allows(v.Kind()) {
			c.add(&errors.KeyTypeError{Key: fmt.Sprintf("%s[%d].%s", schema.KeyModels, index, key), Expected: expected.String(), Actual: v.Kind().String()})
		}
	}

	if v, ok := fields[schema.KeyFeatureIndices]; ok && v.Kind() == domain.KindList {
		indices, ok := v.Ints()
		if !ok {
			c.add(&errors.KeyTypeError{Key: fmt.Sprintf("%s[%d].%s", schema.KeyModels, index, schema.KeyFeatureIndices), Expected: "list of int", Actual: v.String()})
		}
		for _, i := range indices {
			if i < 0 {
				c.add(&errors.ParamValueError{Field: schema.KeyFeatureIndices, Rule: "gte=0"})
				break
			}
		}
		spec.FeatureListIndices = indices
	}
	if g, ok := fields[schema.KeyFeatureGroup].Str(); ok {
		spec.FeatureGroup = g
		if !features.IsGroup(g) {
			c.add(&errors.ParamValueError{Field: schema.KeyFeatureGroup, Rule: fmt.Sprintf("known feature group, got %q", g)})
		}
	}

	if hv, ok := fields[schema.KeyHyperparams]; ok {
		hyper, _ := hv.Map()
		known, _ := schema.HyperparameterKeys(kind)
		badHyper, _ := lo.Difference(lo.Keys(hyper), known)
		unknown = append(unknown, badHyper...)
		for key, v := range hyper {
			expected, err := schema.HyperparamType(kind, key)
			if err != nil {
				continue
			}
			if !expected.Allows(v.Kind()) {
				c.add(&errors.HyperparameterTypeError{Model: name, Key: key, Expected: expected.String(), Actual: v.Kind().String()})
				continue
			}
			spec.Hyperparameters[key] = v
		}
	}
	if unknown = lo.Uniq(unknown); len(unknown) > 0 {
		sort.Strings(unknown)
		c.add(&errors.UnknownModelKeyError{Model: name, Keys: unknown})
	}

	rules := hyperRules{
		K:         intRule(spec, "k"),
		C:         floatRule(spec, "C"),
		Gamma:     floatRule(spec, "gamma"),
		Epochs:    intRule(spec, "epochs"),
		BatchSize: intRule(spec, "batch size"),
	}
	addStructErrors(validate.Struct(rules), name+".hyperparameters", c)

	return spec, len(c.violations) == before
}

func addStructErrors(err error, scope string, c *collector) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !stdErrors.As(err, &fieldErrs) {
		c.add(err)
		return
	}
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		c.add(&errors.ParamValueError{Field: scope + "." + fe.Field(), Rule: rule})
	}
}
