package classify

// DefaultType is assigned to pages where no start pattern matches.
const DefaultType = "UNKNOWN_DOCUMENT"

// TypePatterns binds one document type to its start patterns.
type TypePatterns struct {
	Type     string
	Patterns []string
}

// startPatterns lists the document-type start markers used by Chilean
// customs paperwork, in Spanish, English, German, Portuguese, Dutch and
// French. The slice order is part of the classification contract: when
// two patterns match at the same text offset, the earlier type wins.
var startPatterns = []TypePatterns{
	{
		Type: "FACTURA_COMERCIAL",
		Patterns: []string{
			"FACTURA COMERCIAL", "FACTURA",
			"COMMERCIAL INVOICE", "INVOICE",
			"HANDELSRECHNUNG", "RECHNUNG",
			"FATURA COMERCIAL", "FATURA",
			"HANDELSFACTUUR", "FACTUUR",
			"FACTURE COMMERCIALE", "FACTURE",
		},
	},
	{
		Type: "DOCUMENTO_TRANSPORTE",
		Patterns: []string{
			"CONOCIMIENTO DE EMBARQUE", "GUÍA AÉREA", "DETALLE DE LA AEROGUIA", "CARTA DE PORTE",
			"BILL OF LADING", "B/L", "AIR WAYBILL", "ROAD WAYBILL", "SEA WAYBILL",
			"COMBINED TRANSPORT", "PORT TO PORT SHIPMENT",
			"FRACHTBRIEF", "LUFTFRACHTBRIEF",
			"CONHECIMENTO DE EMBARQUE", "CARTA DE PORTE",
			"ZEEVRACHTBRIEF", "VRACHTBRIEF",
			"CONNAISSEMENT", "LETTRE DE TRANSPORT AÉRIEN", "LETTRE DE VOITURE",
		},
	},
	{
		Type: "CERTIFICADO_ORIGEN",
		Patterns: []string{
			"CERTIFICADO DE ORIGEN", "CERTIFICACION DE ORIGEN",
			"CERTIFICATE OF ORIGIN", "CERTIFICATION OF ORIGIN",
			"URSPRUNGSZEUGNIS",
			"CERTIFICADO DE ORIGEM",
			"CERTIFICAAT VAN OORSPRONG",
			"CERTIFICAT D'ORIGINE",
		},
	},
	{
		Type: "LISTA_EMBALAJE",
		Patterns: []string{
			"LISTA DE EMBALAJE", "LISTA DE EMPAQUE",
			"PACKING LIST", "PACKING LIST ORDER",
			"PACKLISTE",
			"LISTA DE EMBALAGEM",
			"PAKLIJST",
			"LISTE DE COLISAGE",
		},
	},
	{
		Type: "CERTIFICADO_SANITARIO",
		Patterns: []string{
			"CERTIFICADO SANITARIO", "CERTIFICADO DE SALUD", "CERTIFICADO SANITARIO DE EXPORTACIÓN",
			"HEALTH CERTIFICATE", "SANITARY CERTIFICATE", "PUBLIC HEALTH CERTIFICATE",
			"GESUNDHEITSZEUGNIS", "GESUNDHEITSBESCHEINIGUNG",
			"CERTIFICADO SANITÁRIO", "CERTIFICADO DE SAÚDE",
			"GEZONDHEIDSCERTIFICAAT", "SANITAIR CERTIFICAAT",
			"CERTIFICAT SANITAIRE", "CERTIFICAT DE SANTÉ",
		},
	},
	{
		Type: "CERTIFICADO_FITOSANITARIO",
		Patterns: []string{
			"CERTIFICADO FITOSANITARIO", "CERTIFICADO FITOSANITARIO DE EXPORTACIÓN",
			"PERMISO FITOSANITARIO",
			"PHYTOSANITARY CERTIFICATE", "PLANT HEALTH CERTIFICATE",
			"PFLANZENGESUNDHEITSZEUGNIS", "PHYTOSANITÄRES ZERTIFIKAT",
			"CERTIFICADO FITOSSANITÁRIO", "CERTIFICADO DE SANIDADE VEGETAL",
			"FYTOSANITAIR CERTIFICAAT", "PLANTGEZONDHEID CERTIFICAAT",
			"CERTIFICAT PHYTOSANITAIRE", "CERTIFICAT DE SANTÉ VÉGÉTALE",
		},
	},
	{
		Type: "CERTIFICADO_VETERINARIO",
		Patterns: []string{
			"CERTIFICADO VETERINARIO", "CERTIFICADO ZOOSANITARIO",
			"CERTIFICADO SANITARIO ANIMAL", "CERTIFICADO VETERINARIO DE EXPORTACIÓN",
			"VETERINARY CERTIFICATE", "ANIMAL HEALTH CERTIFICATE", "ZOOSANITARY CERTIFICATE",
			"VETERINÄRBESCHEINIGUNG", "TIERÄRZTLICHES ZEUGNIS",
			"CERTIFICADO VETERINÁRIO", "CERTIFICADO ZOOSSANITÁRIO",
			"VETERINAIR CERTIFICAAT", "DIERENGEZONDHEID CERTIFICAAT",
			"CERTIFICAT VÉTÉRINAIRE", "CERTIFICAT DE SANTÉ ANIMALE",
		},
	},
	{
		Type: "CERTIFICADO_ANALISIS",
		Patterns: []string{
			"CERTIFICADO DE ANÁLISIS", "CERTIFICADO DE ANALISIS", "HOJA DE ANÁLISIS",
			"INFORME DE ANÁLISIS",
			"CERTIFICATE OF ANALYSIS", "ANALYTICAL CERTIFICATE", "TEST REPORT",
			"ANALYSIS REPORT", "COA",
			"ANALYSEZERTIFIKAT", "PRÜFBERICHT", "ANALYSENBESCHEINIGUNG",
			"CERTIFICADO DE ANÁLISE", "RELATÓRIO DE ANÁLISE",
			"CERTIFICAAT VAN ANALYSE", "ANALYSERAPPORT",
			"CERTIFICAT D'ANALYSE", "RAPPORT D'ANALYSE",
		},
	},
	{
		Type: "POLIZA_SEGURO",
		Patterns: []string{
			"PÓLIZA DE SEGURO", "CERTIFICADO DE SEGURO",
			"INSURANCE POLICY", "INSURANCE CERTIFICATE", "COVER NOTE",
			"VERSICHERUNGSPOLICE", "VERSICHERUNGSZERTIFIKAT",
			"APÓLICE DE SEGURO", "CERTIFICADO DE SEGURO",
			"VERZEKERINGSBEWIJS", "POLIS",
			"POLICE D'ASSURANCE", "CERTIFICAT D'ASSURANCE",
		},
	},
	{
		Type: "DECLARACION DE INGRESO",
		Patterns: []string{
			"DECLARACIÓN DE INGRESO", "DECLARACION DE INGRESO",
			"DECLARATION OF INCOME",
			"EINKOMMENSERKLÄRUNG",
			"DECLARAÇÃO DE RENDA",
			"INKOMSTENVERKLARING",
			"DÉCLARATION DE REVENU",
		},
	},
	{
		Type: "DECLARACION JURADA",
		Patterns: []string{
			"DECLARACIÓN JURADA",
			"SWORN STATEMENT",
			"EIDESSTATTLICHE ERKLÄRUNG",
			"DECLARAÇÃO JURAMENTADA",
			"GEZWOREN VERKLARING",
			"DÉCLARATION SOUS SERMENT",
		},
	},
	{
		Type: "CARTA_REMISION",
		Patterns: []string{
			"CARTA DE REMISIÓN", "CARTA REMISORIA", "CARTA DE ENVÍO",
			"TRANSMITTAL LETTER", "TRANSMITTAL", "DOCUMENT TRANSMITTAL", "COVERING LETTER",
			"BEGLEITSCHREIBEN", "SENDESCHREIBEN",
			"CARTA DE REMESSA", "CARTA DE TRANSMISSÃO",
			"BEGELEIDENDE BRIEF", "VERZENDBRIEF",
			"LETTRE DE TRANSMISSION", "LETTRE D'ENVOI",
		},
	},
	{
		Type: "DOCUMENTO_MENSAJERIA",
		Patterns: []string{
			"GUÍA DE MENSAJERÍA", "ENVÍO DE DOCUMENTOS", "COURIER",
			"COURIER WAYBILL", "DOCUMENT SHIPMENT", "EXPRESS SHIPMENT",
			"KURIERSENDUNG", "DOKUMENTENVERSAND",
			"GUIA DE COURIER", "ENVIO DE DOCUMENTOS",
			"KOERIERSZENDING", "DOCUMENTENVERZENDING",
			"ENVOI PAR COURSIER", "EXPÉDITION DE DOCUMENTS",
			// Courier-specific service markers (DHL, FedEx, UPS, TNT, Aramex)
			"DOX", "EXPRESS WORLDWIDE", "DHL EXPRESS", "WAYBILL DOC",
			"FEDEX ENVELOPE", "PRIORITY OVERNIGHT", "INTERNATIONAL DOCUMENT",
			"FEDEX INTERNATIONAL PRIORITY",
			"UPS EXPRESS ENVELOPE", "UPS WORLDWIDE EXPRESS", "UPS DOCUMENT",
			"TNT EXPRESS DOCUMENT", "TNT ENVELOPE",
			"ARAMEX DOCUMENT", "ARAMEX EXPRESS",
		},
	},
	{
		Type: "AVISO_RETENCION",
		Patterns: []string{
			"AVISO DE RETENCIÓN", "AVISO DE RETENCION", "NOTIFICACIÓN DE RETENCIÓN",
			"NOTIFICACION DE RETENCION",
			"RETENTION NOTICE", "HOLD NOTICE", "CUSTOMS HOLD", "SHIPMENT ON HOLD",
			"DETENTION NOTICE", "CARGO HOLD NOTICE",
			"ZURÜCKHALTUNGSMITTEILUNG", "ZOLLVORMERKUNG", "SENDUNG ZURÜCKGEHALTEN",
			"AVISO DE RETENÇÃO", "NOTIFICAÇÃO DE RETENÇÃO", "RETENÇÃO ADUANEIRA",
			"KENNISGEVING VAN BEWARING", "DOUANE HOLD", "ZENDING VASTGEHOUDEN",
			"AVIS DE RÉTENTION", "AVIS DE RETENUE", "RÉTENTION DOUANIÈRE",
		},
	},
}

// Types returns the taxonomy in table order.
func Types() []string {
	out := make([]string, len(startPatterns))
	for i, tp := range startPatterns {
		out[i] = tp.Type
	}
	return out
}
