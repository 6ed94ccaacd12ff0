package directory

// Region is the broad geographic classification of a wilaya.
type Region string

const (
    RegionNord   Region = "nord"
    RegionSud    Region = "sud"
    RegionEst    Region = "est"
    RegionOuest  Region = "ouest"
    RegionCentre Region = "centre"
)

// Wilaya is one of Algeria's 58 provinces. Reference data, fixed at build time.
type Wilaya struct {
    Code   int    `json:"code"`
    Name   string `json:"name"`
    NameAr string `json:"name_ar"`
    Region Region `json:"region"`
}

// Commune is a municipality inside a wilaya. Names are unique per wilaya only.
type Commune struct {
    Name       string `json:"name"`
    WilayaCode int    `json:"wilaya_code"`
}

// wilayas lists all 58 provinces ordered by code.
var wilayas = []Wilaya{
    {1, "Adrar", "أدرار", RegionSud},
    {2, "Chlef", "الشلف", RegionOuest},
    {3, "Laghouat", "الأغواط", RegionSud},
    {4, "Oum El Bouaghi", "أم البواقي", RegionEst},
    {5, "Batna", "باتنة", RegionEst},
    {6, "Béjaïa", "بجاية", RegionEst},
    {7, "Biskra", "بسكرة", RegionSud},
    {8, "Béchar", "بشار", RegionSud},
    {9, "Blida", "البليدة", RegionCentre},
    {10, "Bouira", "البويرة", RegionCentre},
    {11, "Tamanrasset", "تمنراست", RegionSud},
    {12, "Tébessa", "تبسة", RegionEst},
    {13, "Tlemcen", "تلمسان", RegionOuest},
    {14, "Tiaret", "تيارت", RegionOuest},
    {15, "Tizi Ouzou", "تيزي وزو", RegionCentre},
    {16, "Alger", "الجزائر", RegionCentre},
    {17, "Djelfa", "الجلفة", RegionCentre},
    {18, "Jijel", "جيجل", RegionEst},
    {19, "Sétif", "سطيف", RegionEst},
    {20, "Saïda", "سعيدة", RegionOuest},
    {21, "Skikda", "سكيكدة", RegionEst},
    {22, "Sidi Bel Abbès", "سيدي بلعباس", RegionOuest},
    {23, "Annaba", "عنابة", RegionEst},
    {24, "Guelma", "قالمة", RegionEst},
    {25, "Constantine", "قسنطينة", RegionEst},
    {26, "Médéa", "المدية", RegionCentre},
    {27, "Mostaganem", "مستغانم", RegionOuest},
    {28, "M'Sila", "المسيلة", RegionCentre},
    {29, "Mascara", "معسكر", RegionOuest},
    {30, "Ouargla", "ورقلة", RegionSud},
    {31, "Oran", "وهران", RegionOuest},
    {32, "El Bayadh", "البيض", RegionSud},
    {33, "Illizi", "إليزي", RegionSud},
    {34, "Bordj Bou Arreridj", "برج بوعريريج", RegionEst},
    {35, "Boumerdès", "بومرداس", RegionCentre},
    {36, "El Tarf", "الطارف", RegionEst},
    {37, "Tindouf", "تندوف", RegionSud},
    {38, "Tissemsilt", "تيسمسيلت", RegionOuest},
    {39, "El Oued", "الوادي", RegionSud},
    {40, "Khenchela", "خنشلة", RegionEst},
    {41, "Souk Ahras", "سوق أهراس", RegionEst},
    {42, "Tipaza", "تيبازة", RegionCentre},
    {43, "Mila", "ميلة", RegionEst},
    {44, "Aïn Defla", "عين الدفلى", RegionCentre},
    {45, "Naâma", "النعامة", RegionOuest},
    {46, "Aïn Témouchent", "عين تموشنت", RegionOuest},
    {47, "Ghardaïa", "غرداية", RegionSud},
    {48, "Relizane", "غليزان", RegionOuest},
    {49, "Timimoun", "تيميمون", RegionSud},
    {50, "Bordj Badji Mokhtar", "برج باجي مختار", RegionSud},
    {51, "Ouled Djellal", "أولاد جلال", RegionSud},
    {52, "Béni Abbès", "بني عباس", RegionSud},
    {53, "In Salah", "عين صالح", RegionSud},
    {54, "In Guezzam", "عين قزام", RegionSud},
    {55, "Touggourt", "تقرت", RegionSud},
    {56, "Djanet", "جانت", RegionSud},
    {57, "El M'Ghair", "المغير", RegionSud},
    {58, "El Meniaa", "المنيعة", RegionSud},
}
