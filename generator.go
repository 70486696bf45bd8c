package docbench

import "fmt"

// ArrayElementKind selects what kind of value an array field's
// elements are drawn from.
type ArrayElementKind string

const (
	ArrayElementString ArrayElementKind = "string"
	ArrayElementNumber ArrayElementKind = "number"
	ArrayElementObject ArrayElementKind = "object"
	ArrayElementMixed  ArrayElementKind = "mixed"
)

// DocumentTemplate selects a canonical preset document shape.
type DocumentTemplate string

const (
	TemplateEcommerceOrder DocumentTemplate = "ecommerce_order"
	TemplateUserProfile    DocumentTemplate = "user_profile"
	TemplateIoTSensor      DocumentTemplate = "iot_sensor_reading"
)

// DocumentGeneratorConfig is the options struct backing
// NewDocumentGenerator; missing fields take the type's zero value, and
// the only validation DocBench performs happens once at construction
// (the "builder with an options struct, defaults in the final record"
// idiom called for in spec.md §9, grounded on
// bsonx.DocumentConstructor's Make(n) pre-sizing pattern).
type DocumentGeneratorConfig struct {
	Rng Rng

	FieldCount   int
	MinStringLen int
	MaxStringLen int

	NumericFieldProbability float64
	BooleanFieldProbability float64

	NestingDepth   int
	FieldsPerLevel int

	TargetPath  ProjectionPath
	TargetValue interface{}

	ArrayFieldCount int
	MinArraySize    int
	MaxArraySize    int
	ArrayElementKind ArrayElementKind

	TargetByteSize      int
	SizeTolerancePct    float64

	TargetFieldPosition int
	TargetFieldName     string

	Template DocumentTemplate
}

// DocumentGenerator is a seeded builder producing structured test
// documents with controllable shape. For a fixed configuration and
// seed, Generate(id) is byte-identical across invocations — the
// reproducibility invariant spec.md §8 tests directly.
type DocumentGenerator struct {
	cfg DocumentGeneratorConfig
}

// NewDocumentGenerator applies documented defaults for any zero-valued
// field and returns a generator.
func NewDocumentGenerator(cfg DocumentGeneratorConfig) *DocumentGenerator {
	if cfg.Rng == nil {
		cfg.Rng = NewRng(0)
	}
	if cfg.FieldCount == 0 {
		cfg.FieldCount = 20
	}
	if cfg.MinStringLen == 0 {
		cfg.MinStringLen = 5
	}
	if cfg.MaxStringLen == 0 {
		cfg.MaxStringLen = 20
	}
	if cfg.MinArraySize == 0 {
		cfg.MinArraySize = 1
	}
	if cfg.MaxArraySize == 0 {
		cfg.MaxArraySize = 5
	}
	if cfg.ArrayElementKind == "" {
		cfg.ArrayElementKind = ArrayElementString
	}
	if cfg.SizeTolerancePct == 0 {
		cfg.SizeTolerancePct = 20
	}
	return &DocumentGenerator{cfg: cfg}
}

// Generate produces one document for id, per the rules in spec.md
// §4.5: a template shape if one is configured, else a byte-size
// target if one is configured, else the regular field-count shape.
func (g *DocumentGenerator) Generate(id string) JsonDocument {
	doc := NewJsonDocument(id)

	switch {
	case g.cfg.Template != "":
		g.generateTemplate(doc)
	case g.cfg.TargetByteSize > 0:
		g.generateSized(doc)
	default:
		g.generateRegular(doc)
	}

	return doc.ensureID()
}

// GenerateBatch produces n documents with ids "{prefix}-0",
// "{prefix}-1", ….
func (g *DocumentGenerator) GenerateBatch(prefix string, n int) []JsonDocument {
	out := make([]JsonDocument, n)
	for i := 0; i < n; i++ {
		out[i] = g.Generate(fmt.Sprintf("%s-%d", prefix, i))
	}
	return out
}

func (g *DocumentGenerator) randomString() string {
	lo, hi := g.cfg.MinStringLen, g.cfg.MaxStringLen
	if hi < lo {
		hi = lo
	}
	n, _ := g.cfg.Rng.NextIntRange(int32(lo), int32(hi+1))
	s, _ := g.cfg.Rng.NextAlphanumeric(int(n))
	return s
}

func (g *DocumentGenerator) randomValue() interface{} {
	roll := g.cfg.Rng.NextFloat64()
	switch {
	case roll < g.cfg.NumericFieldProbability:
		if g.cfg.Rng.NextBool() {
			n, _ := g.cfg.Rng.NextIntRange(0, 1_000_000)
			return int64(n)
		}
		return g.cfg.Rng.NextFloat64() * 1000
	case roll < g.cfg.NumericFieldProbability+g.cfg.BooleanFieldProbability:
		return g.cfg.Rng.NextBool()
	default:
		return g.randomString()
	}
}

func (g *DocumentGenerator) randomArrayElement() interface{} {
	kind := g.cfg.ArrayElementKind
	if kind == ArrayElementMixed {
		switch n, _ := g.cfg.Rng.NextIntBound(3); n {
		case 0:
			kind = ArrayElementString
		case 1:
			kind = ArrayElementNumber
		default:
			kind = ArrayElementObject
		}
	}
	switch kind {
	case ArrayElementNumber:
		n, _ := g.cfg.Rng.NextIntRange(0, 1_000_000)
		return int64(n)
	case ArrayElementObject:
		obj := NewJsonDocument("")
		for i := 0; i < 3; i++ {
			obj.Set(fmt.Sprintf("f%d", i), g.randomValue())
		}
		return obj.Content()
	default:
		return g.randomString()
	}
}

func (g *DocumentGenerator) randomArray() []interface{} {
	lo, hi := g.cfg.MinArraySize, g.cfg.MaxArraySize
	if hi < lo {
		hi = lo
	}
	n, _ := g.cfg.Rng.NextIntRange(int32(lo), int32(hi+1))
	out := make([]interface{}, n)
	for i := range out {
		out[i] = g.randomArrayElement()
	}
	return out
}

// buildNested attaches a "nested" object tree depth levels deep, each
// level holding fieldsPerLevel padding fields plus, at every level
// except the deepest, another "nested" child.
func (g *DocumentGenerator) buildNested(depth, fieldsPerLevel int) JsonDocument {
	level := NewJsonDocument("")
	for i := 0; i < fieldsPerLevel; i++ {
		level.Set(fmt.Sprintf("pad%d", i), g.randomValue())
	}
	if depth > 1 {
		level.Set("nested", g.buildNested(depth-1, fieldsPerLevel).Content())
	}
	return level
}

func (g *DocumentGenerator) generateRegular(doc JsonDocument) {
	regularCount := g.cfg.FieldCount - g.cfg.ArrayFieldCount
	if regularCount < 0 {
		regularCount = 0
	}

	targetPos := g.cfg.TargetFieldPosition
	hasTarget := targetPos > 0 && g.cfg.TargetFieldName != ""

	for i := 1; i <= regularCount; i++ {
		if hasTarget && i == targetPos {
			doc.Set(g.cfg.TargetFieldName, g.cfg.TargetValue)
			continue
		}
		doc.Set(fmt.Sprintf("field%d", i), g.randomValue())
	}

	if g.cfg.NestingDepth > 0 {
		doc.Set("nested", g.buildNested(g.cfg.NestingDepth, g.cfg.FieldsPerLevel).Content())
	}

	for i := 0; i < g.cfg.ArrayFieldCount; i++ {
		doc.Set(fmt.Sprintf("array%d", i), g.randomArray())
	}

	if g.cfg.TargetPath != "" {
		_ = doc.SetPath(string(g.cfg.TargetPath), g.cfg.TargetValue)
	}
}

// estimateSize follows spec.md §4.5's size-estimation rule: 4 bytes
// overhead per value, 2*len+4 for strings (UTF-16 approximation), 8
// for numbers, 1 for booleans, recursive sum with 4-byte container
// overhead for arrays and objects.
func estimateSize(v interface{}) int {
	switch t := v.(type) {
	case string:
		return 2*len(t) + 4
	case int, int32, int64, float32, float64:
		return 8
	case bool:
		return 1
	case map[string]interface{}:
		total := 4
		for _, e := range t {
			total += estimateSize(e) + 4
		}
		return total
	case []interface{}:
		total := 4
		for _, e := range t {
			total += estimateSize(e) + 4
		}
		return total
	default:
		return 4
	}
}

func (g *DocumentGenerator) generateSized(doc JsonDocument) {
	target := g.cfg.TargetByteSize
	tolerance := g.cfg.SizeTolerancePct / 100
	lo := int(float64(target) * (1 - tolerance))
	hi := int(float64(target) * (1 + tolerance))

	idx := 0
	for {
		size := estimateSize(doc.Content())
		if size >= lo && size <= hi {
			return
		}
		if size > hi {
			return
		}
		doc.Set(fmt.Sprintf("field%d", idx), g.randomValue())
		idx++
		if idx > 1_000_000 {
			return
		}
	}
}

func (g *DocumentGenerator) generateTemplate(doc JsonDocument) {
	switch g.cfg.Template {
	case TemplateEcommerceOrder:
		g.generateEcommerceOrder(doc)
	case TemplateUserProfile:
		g.generateUserProfile(doc)
	case TemplateIoTSensor:
		g.generateIoTSensor(doc)
	}
}

func (g *DocumentGenerator) generateEcommerceOrder(doc JsonDocument) {
	doc.Set("orderNumber", g.randomString())
	doc.Set("status", []string{"pending", "shipped", "delivered", "cancelled"}[mustIntBound(g.cfg.Rng, 4)])
	doc.Set("total", g.cfg.Rng.NextFloat64()*500)
	customer := NewJsonDocument("")
	customer.Set("name", g.randomString())
	customer.Set("email", g.randomString()+"@example.com")
	addr := NewJsonDocument("")
	addr.Set("street", g.randomString())
	addr.Set("zip", g.randomString())
	customer.Set("addresses", []interface{}{addr.Content()})
	doc.Set("customer", customer.Content())

	items := make([]interface{}, 0, 3)
	for i := 0; i < 3; i++ {
		item := NewJsonDocument("")
		item.Set("sku", g.randomString())
		item.Set("quantity", int64(mustIntBound(g.cfg.Rng, 10)+1))
		item.Set("price", g.cfg.Rng.NextFloat64()*100)
		items = append(items, item.Content())
	}
	doc.Set("items", items)
}

func (g *DocumentGenerator) generateUserProfile(doc JsonDocument) {
	doc.Set("username", g.randomString())
	doc.Set("displayName", g.randomString())
	doc.Set("age", int64(18+mustIntBound(g.cfg.Rng, 60)))
	doc.Set("active", g.cfg.Rng.NextBool())
	prefs := NewJsonDocument("")
	prefs.Set("theme", []string{"light", "dark"}[mustIntBound(g.cfg.Rng, 2)])
	prefs.Set("notifications", g.cfg.Rng.NextBool())
	doc.Set("preferences", prefs.Content())
	tags := make([]interface{}, 0, 3)
	for i := 0; i < 3; i++ {
		tags = append(tags, g.randomString())
	}
	doc.Set("tags", tags)
}

func (g *DocumentGenerator) generateIoTSensor(doc JsonDocument) {
	doc.Set("deviceId", g.randomString())
	doc.Set("temperature", g.cfg.Rng.NextFloat64()*50)
	doc.Set("humidity", g.cfg.Rng.NextFloat64()*100)
	doc.Set("battery", g.cfg.Rng.NextFloat64())
	location := NewJsonDocument("")
	location.Set("lat", g.cfg.Rng.NextFloat64()*180-90)
	location.Set("lon", g.cfg.Rng.NextFloat64()*360-180)
	doc.Set("location", location.Content())
	readings := make([]interface{}, 0, 5)
	for i := 0; i < 5; i++ {
		readings = append(readings, g.cfg.Rng.NextFloat64()*100)
	}
	doc.Set("readings", readings)
}

func mustIntBound(r Rng, bound int32) int {
	n, _ := r.NextIntBound(bound)
	return int(n)
}
