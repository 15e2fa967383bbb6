package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-support-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeZones struct {
	zones []*entity.ShippingZone
	err   error
	calls int
}

func (f *fakeZones) FindShippingZones(_ context.Context, _ uuid.UUID) ([]*entity.ShippingZone, error) {
	f.calls++
	return f.zones, f.err
}

func egyptZones() []*entity.ShippingZone {
	return []*entity.ShippingZone{
		{Governorates: []string{"القاهرة", "القاهره", "Cairo"}, Price: 50, DeliveryTime: "2 days", IsActive: true},
		{Governorates: []string{"الجيزة", "Giza"}, Price: 55, DeliveryTime: "2 days", IsActive: true},
		{Governorates: []string{"الإسكندرية", "اسكندرية", "Alexandria"}, Price: 65, DeliveryTime: "3 days", IsActive: true},
		{Governorates: []string{"كفر الشيخ"}, Price: 70, DeliveryTime: "4 days", IsActive: true},
		{Governorates: []string{"أسوان", "Aswan"}, Price: 90, DeliveryTime: "5 days", IsActive: false},
	}
}

func TestIsAskingAboutShipping(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"هيوصل امتى؟", true},
		{"عايز تيشرت", false},
		{"الشحن بكام للجيزة", true},
		{"بتوصلوا اسكندرية؟", true},
		{"مصاريف الشَّحن كام", true},
		{"Do you ship to Giza?", true},
		{"How long does delivery take", true},
		{"السعر كام", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAskingAboutShipping(tt.message))
		})
	}
}

func TestNormalizeArabic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"القاهرة", "قاهره"},
		{"القاهره", "قاهره"},
		{"محافظة الإسكندرية", "اسكندريه"},
		{"الجـــيزة", "جيزه"},
		{"أسوانُ", "اسوان"},
		{"بالمنيا", "منيا"},
		{"Cairo Governorate!", "cairo"},
		{"مستشفى", "مستشفي"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArabic(tt.in))
		})
	}
}

func TestShippingResolve_FoundInMessage(t *testing.T) {
	r := NewShippingResolver(&fakeZones{zones: egyptZones()})

	res, err := r.Resolve(context.Background(), "الشحن للقاهرة بكام؟", uuid.New(), nil)

	require.NoError(t, err)
	assert.True(t, res.IsAsking)
	assert.Equal(t, "القاهرة", res.FoundGovernorate)
	require.NotNil(t, res.ShippingInfo)
	assert.Equal(t, 50.0, res.ShippingInfo.Price)
	assert.Equal(t, "2 days", res.ShippingInfo.DeliveryTime)
	assert.Empty(t, res.AvailableGovernorates)
}

func TestShippingResolve_GovernorateWithoutAsking(t *testing.T) {
	r := NewShippingResolver(&fakeZones{zones: egyptZones()})

	res, err := r.Resolve(context.Background(), "أنا من كفر الشيخ", uuid.New(), nil)

	require.NoError(t, err)
	assert.False(t, res.IsAsking)
	require.NotNil(t, res.ShippingInfo)
	assert.Equal(t, "كفر الشيخ", res.ShippingInfo.Governorate)
}

func TestShippingResolve_FallsBackToRecentHistory(t *testing.T) {
	r := NewShippingResolver(&fakeZones{zones: egyptZones()})
	history := []ConversationTurn{
		{IsFromCustomer: true, Content: "أنا في الجيزة"},
		{IsFromCustomer: false, Content: "أهلا بيك"},
		{IsFromCustomer: true, Content: "عايز الجاكت الأسود"},
		{IsFromCustomer: false, Content: "متاح مقاس L"},
		{IsFromCustomer: true, Content: "اسكندرية"},
	}

	res, err := r.Resolve(context.Background(), "هيوصل امتى؟", uuid.New(), history)

	require.NoError(t, err)
	require.NotNil(t, res.ShippingInfo)
	assert.Equal(t, "الإسكندرية", res.FoundGovernorate, "the zone's own spelling is reported")

	// The Giza turn is outside the lookback window.
	res, err = r.Resolve(context.Background(), "هيوصل امتى؟", uuid.New(), history[:4])
	require.NoError(t, err)
	assert.Nil(t, res.ShippingInfo)
	assert.Empty(t, res.FoundGovernorate)
}

func TestShippingResolve_HistoryIgnoredWhenNotAsking(t *testing.T) {
	r := NewShippingResolver(&fakeZones{zones: egyptZones()})
	history := []ConversationTurn{{IsFromCustomer: true, Content: "أنا في الجيزة"}}

	res, err := r.Resolve(context.Background(), "عايز تيشرت", uuid.New(), history)

	require.NoError(t, err)
	assert.False(t, res.IsAsking)
	assert.Nil(t, res.ShippingInfo)
	assert.Empty(t, res.FoundGovernorate)
}

func TestShippingResolve_InactiveZoneIsNotFound(t *testing.T) {
	r := NewShippingResolver(&fakeZones{zones: egyptZones()})

	res, err := r.Resolve(context.Background(), "بتشحنوا أسوان؟", uuid.New(), nil)

	require.NoError(t, err)
	assert.True(t, res.IsAsking)
	assert.Equal(t, "أسوان", res.FoundGovernorate)
	assert.Nil(t, res.ShippingInfo)
	assert.NotEmpty(t, res.AvailableGovernorates)
	assert.NotContains(t, res.AvailableGovernorates, "أسوان")
}

func TestShippingResolve_AskingWithoutGovernorateSuggestsAtMostTen(t *testing.T) {
	zones := make([]*entity.ShippingZone, 0, 15)
	for i := 0; i < 15; i++ {
		zones = append(zones, &entity.ShippingZone{
			Governorates: []string{"zone" + strings.Repeat("x", i+1)},
			Price:        40,
			IsActive:     true,
		})
	}
	r := NewShippingResolver(&fakeZones{zones: zones})

	res, err := r.Resolve(context.Background(), "الشحن بكام؟", uuid.New(), nil)

	require.NoError(t, err)
	assert.True(t, res.IsAsking)
	assert.Nil(t, res.ShippingInfo)
	assert.Len(t, res.AvailableGovernorates, 10)
}

func TestShippingResolve_LookupError(t *testing.T) {
	r := NewShippingResolver(&fakeZones{err: errors.New("db down")})

	res, err := r.Resolve(context.Background(), "الشحن للقاهرة", uuid.New(), nil)

	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestResolveProfile(t *testing.T) {
	turns := func(n int) []ConversationTurn { return make([]ConversationTurn, n) }

	p := ResolveProfile(nil, nil)
	assert.Equal(t, NewCustomerPlaceholder, p.Name)
	assert.Equal(t, UnspecifiedPlaceholder, p.Phone)
	assert.Equal(t, UnspecifiedPlaceholder, p.City)
	assert.True(t, p.IsNewCustomer)
	assert.Equal(t, StageStarting, p.Stage)

	p = ResolveProfile(&CustomerData{Name: " Mona ", Phone: "0100", OrderCount: 2}, turns(2))
	assert.Equal(t, "Mona", p.Name)
	assert.Equal(t, "0100", p.Phone)
	assert.False(t, p.IsNewCustomer)
	assert.Equal(t, 2, p.ConversationLength)
	assert.Equal(t, StageEarly, p.Stage)

	p = ResolveProfile(&CustomerData{}, turns(3))
	assert.Equal(t, StageOngoing, p.Stage)
}

func TestResolveHistory_Truncation(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	history := make([]ConversationTurn, 0, 6)
	for i := 0; i < 6; i++ {
		history = append(history, ConversationTurn{
			IsFromCustomer: i%2 == 0,
			Content:        strings.Repeat(string(rune('a'+i)), 500),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
	}

	res := ResolveHistory(history, 2000)

	assert.True(t, res.HasHistory)
	assert.True(t, res.Truncated)
	require.Len(t, res.Items, 4)
	for i, item := range res.Items {
		assert.Equal(t, i+1, item.Index)
		assert.Equal(t, history[2+i].Content, item.Content, "items must be a suffix in original order")
	}
}

func TestResolveHistory_CountsRunes(t *testing.T) {
	history := []ConversationTurn{
		{Content: strings.Repeat("ش", 6)},
		{Content: strings.Repeat("ش", 5)},
	}

	res := ResolveHistory(history, 11)
	assert.False(t, res.Truncated)
	assert.Len(t, res.Items, 2)

	res = ResolveHistory(history, 10)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Items, 1)
}

func TestResolveHistory_SingleOversizedTurn(t *testing.T) {
	res := ResolveHistory([]ConversationTurn{{Content: strings.Repeat("x", 50)}}, 10)

	assert.True(t, res.HasHistory)
	assert.True(t, res.Truncated)
	assert.Empty(t, res.Items)
}

func TestResolveHistory_Empty(t *testing.T) {
	res := ResolveHistory(nil, 0)

	assert.False(t, res.HasHistory)
	assert.False(t, res.Truncated)
	assert.Empty(t, res.Items)
}

func TestResolveRAG(t *testing.T) {
	res := ResolveRAG([]RAGItem{
		{Type: RAGTypeFAQ, Content: "returns within 14 days"},
		{Type: "banner", Content: "ignored"},
		{Type: RAGTypeProduct, Content: "black hoodie 450 EGP", Metadata: map[string]interface{}{"name": "Black Hoodie"}},
		{Type: RAGTypePolicy, Content: "cash on delivery"},
	})

	assert.True(t, res.HasData)
	assert.True(t, res.HasProducts)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 1, res.Items[0].Index)
	assert.Equal(t, RAGTypeProduct, res.Items[1].Type)
	assert.Equal(t, 2, res.Items[1].Index)
	assert.Equal(t, 3, res.Items[2].Index)

	empty := ResolveRAG(nil)
	assert.False(t, empty.HasData)
	assert.False(t, empty.HasProducts)
}
