package schemahelper

import "testing"

func Test_fieldList(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		list   string
		ident  string
	}{
		{
			name:   "single",
			fields: Field("user_id"),
			list:   "user_id",
			ident:  "user_id",
		},
		{
			name:   "composite",
			fields: Fields{"a", "b", "c"},
			list:   "a,b,c",
			ident:  "a_b_c",
		},
		{
			name:   "order preserved",
			fields: Fields{"event_id", "tenant_id"},
			list:   "event_id,tenant_id",
			ident:  "event_id_tenant_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldList(tt.fields); got != tt.list {
				t.Errorf("fieldList()\ngot  %q\nwant %q", got, tt.list)
			}
			if got := fieldListName(tt.fields); got != tt.ident {
				t.Errorf("fieldListName()\ngot  %q\nwant %q", got, tt.ident)
			}
		})
	}
}

func Test_constraintName(t *testing.T) {
	want := "fk_orders_user_id"
	for i := 0; i < 3; i++ {
		if got := constraintName("orders", Field("user_id")); got != want {
			t.Errorf("constraintName()\ngot  %q\nwant %q", got, want)
		}
	}

	want = "fk_line_items_order_id_tenant_id"
	if got := constraintName("line_items", Fields{"order_id", "tenant_id"}); got != want {
		t.Errorf("constraintName()\ngot  %q\nwant %q", got, want)
	}
}
