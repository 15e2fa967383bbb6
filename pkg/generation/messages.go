package generation

// Silent reasons are shown to support staff when a turn is suppressed.
const (
	ReasonAllKeysUnavailable = "جميع المفاتيح غير متاحة حاليا، حاول لاحقا (all keys temporarily unavailable, try later)"
	ReasonNoKeysConfigured   = "لا توجد مفاتيح API مفعلة لهذه الشركة (no active API keys configured for this company)"
	ReasonKeyLookupFailed    = "تعذر تحميل مفاتيح API (could not load API keys)"
	ReasonSafetyBlocked      = "تم حظر الرد بواسطة فلتر الأمان (response blocked by the safety filter)"
	ReasonRequestRejected    = "رفض مزود الذكاء الاصطناعي الطلب (the AI provider rejected the request)"
	ReasonRetriesExhausted   = "فشلت جميع المحاولات، حاول لاحقا (all attempts failed, try later)"
	ReasonCanceled           = "تم إلغاء الطلب (request canceled)"
	ReasonInternal           = "خطأ داخلي أثناء توليد الرد (internal error while generating the reply)"
)
