package catalog_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/miruken-go/reflected/catalog"
	"github.com/stretchr/testify/suite"
)

type (
	base struct {
		id   int
		Tags []string
	}

	extra struct {
		depth int
	}

	Widget struct {
		base
		*extra
		Label   string
		count   int
		weird   int
		OnClick func(x, y int)
		onHover []func()
	}
)

var (
	widgetCount = 3
	theme       = "dark"
	created     []func(*Widget)
)

func newWidget(label string) *Widget {
	return &Widget{Label: label}
}

func newWidgetValue() (Widget, error) {
	return Widget{}, errors.New("unsupported")
}

func (w *Widget) Count() int         { return w.count }
func (w *Widget) SetCount(count int) { w.count = count }
func (w *Widget) GetLabel() string   { return w.Label }
func (w *Widget) Size() int          { return 1 }
func (w *Widget) GetSize() int       { return 2 }
func (w *Widget) Weird() int         { return w.weird }
func (w *Widget) SetWeird(string)    {}
func (w *Widget) Click(x, y int) {
	if w.OnClick != nil {
		w.OnClick(x, y)
	}
}

func widgetType() *catalog.Type {
	return catalog.TypeOf[Widget]().
		StaticField("widgetCount", &widgetCount).
		StaticProperty("Theme", func() string { return theme }, func(t string) { theme = t }).
		StaticMethod("clamp", func(v int) int { return min(v, 10) }).
		StaticMethod("clamp", func(v, hi int) int { return min(v, hi) }).
		Constructor(newWidget).
		Constructor(newWidgetValue).
		StaticEvent("created", &created)
}

type CatalogTestSuite struct {
	suite.Suite
}

func (suite *CatalogTestSuite) TestType() {
	suite.Run("Names", func() {
		typ := widgetType()
		suite.Equal("Widget", typ.Name())
		suite.Equal("github.com/miruken-go/reflected/catalog_test.Widget", typ.FullName())
		suite.True(typ.Matches("Widget"))
		suite.True(typ.Matches("catalog_test.Widget"))
		suite.True(typ.Matches(typ.FullName()))
		suite.False(typ.Matches("Gadget"))
	})

	suite.Run("Pointer", func() {
		suite.Equal(reflect.TypeFor[Widget](), catalog.Of(reflect.TypeFor[*Widget]()).Reflect())
	})

	suite.Run("Unnamed", func() {
		suite.Panics(func() { catalog.Of(reflect.TypeFor[struct{}]()) })
		suite.Panics(func() { catalog.Of(nil) })
	})

	suite.Run("Info", func() {
		typ := widgetType()
		info := typ.Lookup(catalog.TypeInfo, "")
		suite.Require().Len(info, 1)
		suite.Same(typ.Info(), info[0])
		suite.True(info[0].Static())
		suite.Len(typ.Lookup(catalog.TypeInfo, "Widget"), 1)
		suite.Empty(typ.Lookup(catalog.TypeInfo, "Gadget"))
	})
}

func (suite *CatalogTestSuite) TestFields() {
	typ := widgetType()

	suite.Run("Promoted", func() {
		ids := typ.Lookup(catalog.Field, "id")
		suite.Require().Len(ids, 1)
		suite.Equal([]int{0, 0}, ids[0].Index())
		suite.False(ids[0].Exported())
		offset, ok := ids[0].Offset()
		suite.True(ok)
		suite.Equal(uintptr(0), offset)
	})

	suite.Run("EmbeddedPointer", func() {
		depth := typ.Lookup(catalog.Field, "depth")
		suite.Require().Len(depth, 1)
		_, ok := depth[0].Offset()
		suite.False(ok)
	})

	suite.Run("Unexported", func() {
		count := typ.Lookup(catalog.Field, "count")
		suite.Require().Len(count, 1)
		field, _ := reflect.TypeFor[Widget]().FieldByName("count")
		offset, ok := count[0].Offset()
		suite.True(ok)
		suite.Equal(field.Offset, offset)
		suite.True(count[0].Readable())
		suite.True(count[0].Writable())
	})

	suite.Run("Static", func() {
		fields := typ.Lookup(catalog.Field, "widgetCount")
		suite.Require().Len(fields, 1)
		suite.True(fields[0].Static())
		suite.Equal(3, fields[0].Var().Interface())
		_, ok := fields[0].Offset()
		suite.False(ok)
	})
}

func (suite *CatalogTestSuite) TestProperties() {
	typ := widgetType()

	suite.Run("GetterSetter", func() {
		props := typ.Lookup(catalog.Property, "Count")
		suite.Require().Len(props, 1)
		suite.True(props[0].Readable())
		suite.True(props[0].Writable())
		suite.Equal(reflect.TypeFor[int](), props[0].Type())
	})

	suite.Run("GetPrefix", func() {
		props := typ.Lookup(catalog.Property, "Label")
		suite.Require().Len(props, 1)
		suite.True(props[0].Readable())
		suite.False(props[0].Writable())
	})

	suite.Run("PrefersUnprefixed", func() {
		props := typ.Lookup(catalog.Property, "Size")
		suite.Require().Len(props, 1)
		w := &Widget{}
		out := props[0].Getter().Call([]reflect.Value{reflect.ValueOf(w)})
		suite.Equal(1, out[0].Interface())
		suite.Empty(typ.Lookup(catalog.Property, "GetSize"))
	})

	suite.Run("MismatchedSetter", func() {
		props := typ.Lookup(catalog.Property, "Weird")
		suite.Require().Len(props, 1)
		suite.False(props[0].Writable())
	})

	suite.Run("Static", func() {
		props := typ.Lookup(catalog.Property, "Theme")
		suite.Require().Len(props, 1)
		suite.True(props[0].Static())
		suite.True(props[0].Writable())
	})

	suite.Run("InvalidStatic", func() {
		suite.Panics(func() { catalog.TypeOf[Widget]().StaticProperty("None", nil, nil) })
		suite.Panics(func() {
			catalog.TypeOf[Widget]().StaticProperty("Bad", func() int { return 0 }, func(string) {})
		})
	})
}

func (suite *CatalogTestSuite) TestMethods() {
	typ := widgetType()

	suite.Run("Instance", func() {
		methods := typ.Lookup(catalog.Method, "Click")
		suite.Require().Len(methods, 1)
		suite.Equal(reflect.TypeFor[func(*Widget, int, int)](), methods[0].Type())
		_, ok := methods[0].ValueMethod()
		suite.False(ok)
	})

	suite.Run("Overloads", func() {
		methods := typ.Lookup(catalog.Method, "clamp")
		suite.Require().Len(methods, 2)
		suite.Equal(1, methods[0].Type().NumIn())
		suite.Equal(2, methods[1].Type().NumIn())
	})

	suite.Run("Constructors", func() {
		ctors := typ.Lookup(catalog.Constructor, "")
		suite.Require().Len(ctors, 2)
		suite.Equal("newWidget", ctors[0].Name())
		suite.Equal("newWidgetValue", ctors[1].Name())
		suite.Len(typ.Lookup(catalog.Constructor, "newWidget"), 1)
	})

	suite.Run("InvalidConstructor", func() {
		suite.Panics(func() { catalog.TypeOf[Widget]().Constructor(func() int { return 0 }) })
		suite.Panics(func() { catalog.TypeOf[Widget]().Constructor(func() (*Widget, int) { return nil, 0 }) })
		suite.Panics(func() { catalog.TypeOf[Widget]().Constructor(nil) })
	})
}

func (suite *CatalogTestSuite) TestEvents() {
	typ := widgetType()

	suite.Run("SingleCast", func() {
		events := typ.Lookup(catalog.Event, "OnClick")
		suite.Require().Len(events, 1)
		suite.False(events[0].Multicast())
		suite.Equal(reflect.TypeFor[func(int, int)](), events[0].HandlerType())
		suite.Len(typ.Lookup(catalog.Field, "OnClick"), 1)
	})

	suite.Run("Multicast", func() {
		events := typ.Lookup(catalog.Event, "onHover")
		suite.Require().Len(events, 1)
		suite.True(events[0].Multicast())
		suite.Equal(reflect.TypeFor[func()](), events[0].HandlerType())
	})

	suite.Run("Static", func() {
		events := typ.Lookup(catalog.Event, "created")
		suite.Require().Len(events, 1)
		suite.True(events[0].Static())
		suite.True(events[0].Multicast())
		suite.Panics(func() { catalog.TypeOf[Widget]().StaticEvent("bad", &widgetCount) })
	})

	suite.Run("NotEvent", func() {
		suite.Nil(typ.Lookup(catalog.Field, "count")[0].HandlerType())
	})
}

func (suite *CatalogTestSuite) TestModule() {
	suite.Run("Types", func() {
		typ := widgetType()
		m := catalog.NewModule("widgets", typ)
		suite.Equal("widgets", m.Name())
		suite.Same(m, typ.Module())
		suite.Len(m.Types(), 1)
		suite.Same(m, m.Add(typ))
	})

	suite.Run("OneModule", func() {
		typ := widgetType()
		catalog.NewModule("first", typ)
		suite.Panics(func() { catalog.NewModule("second", typ) })
	})

	suite.Run("Invalid", func() {
		suite.Panics(func() { catalog.NewModule("") })
		suite.Panics(func() { catalog.NewModule("nil", nil) })
	})
}

func (suite *CatalogTestSuite) TestKind() {
	suite.Equal("Event", catalog.Event.String())
	suite.Equal("Kind(9)", catalog.Kind(9).String())
	suite.True(catalog.TypeInfo.Valid())
	suite.False(catalog.Kind(9).Valid())
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}
