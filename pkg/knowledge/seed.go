package knowledge

import contractx "github.com/kermits/telassist/agent/contract"

// DefaultEntries is the built-in FAQ set used when no external corpus is
// loaded.
func DefaultEntries() []contractx.FAQEntry {
	return []contractx.FAQEntry{
		{
			Question: "Faturamı nasıl ödeyebilirim?",
			Answer:   "Faturanızı mobil uygulamamızdan, internet şubesinden, anlaşmalı banka ATM'lerinden veya otomatik ödeme talimatı ile ödeyebilirsiniz.",
			Source:   "billing",
		},
		{
			Question: "Fatura son ödeme tarihimi kaçırırsam ne olur?",
			Answer:   "Son ödeme tarihinden sonra yapılan ödemelere gecikme bedeli uygulanır. Ödeme yapılmazsa hattınız önce aramaya, sonra tüm kullanıma kapatılabilir.",
			Source:   "billing",
		},
		{
			Question: "Tarife değişikliği ne zaman geçerli olur?",
			Answer:   "Tarife değişiklikleri onayınızın ardından dakikalar içinde tanımlanır. Yeni tarife ücreti bir sonraki fatura döneminden itibaren yansıtılır.",
			Source:   "subscription",
		},
		{
			Question: "İnternet ayarlarımı nasıl yapabilirim?",
			Answer:   "Telefonunuza otomatik internet ayarlarını AYAR yazıp 532'ye kısa mesaj göndererek alabilirsiniz. Ayarlar geldikten sonra cihazınızı yeniden başlatın.",
			Source:   "technical",
		},
		{
			Question: "Yurtdışında hattımı kullanabilir miyim?",
			Answer:   "Yurtdışı kullanım için hattınızda uluslararası dolaşım açık olmalıdır. Dolaşımı mobil uygulamadan veya müşteri hizmetlerinden açtırabilirsiniz; ücretlendirme ülkeye göre değişir.",
			Source:   "roaming",
		},
		{
			Question: "SIM kartım kayboldu, ne yapmalıyım?",
			Answer:   "Hattınızın kötüye kullanılmaması için en kısa sürede müşteri hizmetlerini arayarak hattınızı kapattırın. Yeni SIM kartınızı kimliğinizle en yakın mağazamızdan alabilirsiniz.",
			Source:   "technical",
		},
		{
			Question: "İnternet kotam bitince ne olur?",
			Answer:   "Kotanız bittiğinde bağlantı hızınız düşürülür, ek ücret yansıtılmaz. Dilerseniz ek paket alarak yüksek hızda kullanmaya devam edebilirsiniz.",
			Source:   "subscription",
		},
		{
			Question: "Taahhüdümü erken iptal edersem ceza öder miyim?",
			Answer:   "Taahhütlü aboneliklerde erken iptal durumunda kalan aylara ait indirim tutarları cayma bedeli olarak yansıtılır. Güncel tutarı müşteri hizmetlerinden öğrenebilirsiniz.",
			Source:   "subscription",
		},
	}
}
