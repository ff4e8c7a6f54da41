package limbmass

import "testing"

func TestParseConditionEval(t *testing.T) {
	tests := []struct {
		name string
		rule string
		vars map[string]float64
		want bool
	}{
		{"ge true", "bodybuilderSize >= 0.8", map[string]float64{"bodybuilderSize": 0.9}, true},
		{"ge boundary", "bodybuilderSize >= 0.8", map[string]float64{"bodybuilderSize": 0.8}, true},
		{"ge false", "bodybuilderSize >= 0.8", map[string]float64{"bodybuilderSize": 0.7}, false},
		{"missing var", "bodybuilderSize >= 0.8", map[string]float64{"bodyFat": 2}, false},
		{"le negative", "bodyFat <= -0.5", map[string]float64{"bodyFat": -1}, true},
		{"or", "pregnant >= 0.5 || bodyFat >= 1.0", map[string]float64{"bodyFat": 1.2}, true},
		{"or neither", "pregnant >= 0.5 || bodyFat >= 1.0", map[string]float64{"pregnant": 0.1, "bodyFat": 0.1}, false},
		{"and", "bodyFat >= 1 && pregnant >= 1", map[string]float64{"bodyFat": 1, "pregnant": 0}, false},
		{"and binds tighter", "pregnant >= 1 || bodyFat >= 1 && muscleDefinition >= 1", map[string]float64{"pregnant": 1}, true},
		{"parens", "(pregnant >= 1 || bodyFat >= 1) && muscleDefinition >= 1", map[string]float64{"pregnant": 1}, false},
		{"no spaces", "bodyFat>=1", map[string]float64{"bodyFat": 1}, true},
		{"canonical variable", "body_fat >= 1", map[string]float64{"bodyFat": 1}, true},
		{"synonym variable", "muscular >= 0.8", map[string]float64{"bodybuilderSize": 0.9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCondition(tt.rule)
			if err != nil {
				t.Fatalf("ParseCondition(%q): %v", tt.rule, err)
			}
			if got := c.Eval(tt.vars); got != tt.want {
				t.Errorf("%s on %v = %v, want %v", c, tt.vars, got, tt.want)
			}
		})
	}
}

func TestParseConditionRejects(t *testing.T) {
	for _, rule := range []string{
		"",
		"bodyFat > 1",
		"bodyFat == 1",
		"bodyFat != 1",
		"bodyFat >=",
		"bodyFat >= 1 &&",
		"(bodyFat >= 1",
		"bodyFat >= 1)",
		"1 >= bodyFat",
		"bodyFat >= 1 & pregnant >= 1",
		"bodyFat >= 1 ; pregnant >= 1",
	} {
		t.Run(rule, func(t *testing.T) {
			if c, err := ParseCondition(rule); err == nil {
				t.Errorf("ParseCondition(%q) = %s, want error", rule, c)
			}
		})
	}
}

func TestCompileConditionFailsClosed(t *testing.T) {
	c, err := CompileCondition("bodybuilderSize > 0.8")
	if err == nil {
		t.Fatal("expected error for unsupported operator")
	}
	if _, ok := c.(Never); !ok {
		t.Fatalf("got %T, want Never", c)
	}
	if c.Eval(map[string]float64{"bodybuilderSize": 5}) {
		t.Error("Never evaluated true")
	}
}

func TestComparisonString(t *testing.T) {
	c, err := ParseCondition("bodyFat >= 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.String(); got != "bodyFat >= 1" {
		t.Errorf("String() = %q", got)
	}
}
