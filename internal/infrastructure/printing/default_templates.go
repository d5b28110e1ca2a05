package printing

const invoiceTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #222; padding-bottom: 8px; }
  .doc-type { font-size: 28px; font-weight: bold; border: 2px solid #222; padding: 4px 14px; }
  .meta { text-align: right; }
  .recipient { margin: 16px 0; padding: 8px; background: #f5f5f5; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 12px; }
  table.lines th { text-align: left; border-bottom: 1px solid #222; padding: 4px; }
  table.lines td { border-bottom: 1px solid #ddd; padding: 4px; }
  td.num, th.num { text-align: right; }
  .total { text-align: right; font-size: 16px; font-weight: bold; margin-top: 12px; }
  .footer { margin-top: 32px; border-top: 1px solid #222; padding-top: 8px; }
  .barcode { font-family: "Libre Barcode 39", monospace; font-size: 36px; letter-spacing: 0; }
  .barcode-caption { font-size: 10px; letter-spacing: 1px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h2>{{.CompanyName}}</h2>
      <div>CUIT: {{.CompanyCUIT}}</div>
      {{if .CompanyAddr}}<div>{{.CompanyAddr}}</div>{{end}}
    </div>
    <div class="doc-type">{{.InvoiceTypeName}}</div>
    <div class="meta">
      <div><strong>{{.FormattedNumber}}</strong></div>
      <div>Fecha: {{formatDate .IssuedAt}}</div>
    </div>
  </div>

  <div class="recipient">
    <div><strong>{{.RecipientName}}</strong></div>
    <div>{{.RecipientDocLabel}}: {{.RecipientDocument}}</div>
  </div>

  <table class="lines">
    <tr><th>Descripción</th><th class="num">Cant.</th><th class="num">P. Unit.</th><th class="num">Importe</th></tr>
    {{range .Lines}}
    <tr>
      <td>{{.Description}}</td>
      <td class="num">{{formatInt .Quantity}}</td>
      <td class="num">{{formatMoney .UnitPrice}}</td>
      <td class="num">{{formatMoney .Amount}}</td>
    </tr>
    {{end}}
  </table>

  <div class="total">Total {{.Currency}} {{formatMoney .Total}}</div>

  <div class="footer">
    <div>CAE: <strong>{{.CAE}}</strong> &nbsp; Vto. CAE: {{formatDate .CAEExpiry}}</div>
    <div class="barcode">{{.BarcodeDigits}}</div>
    <div class="barcode-caption">{{barcodeDigits .BarcodeDigits}}</div>
  </div>
</body>
</html>`

const creditNoteTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #222; padding-bottom: 8px; }
  .doc-type { font-size: 22px; font-weight: bold; border: 2px solid #222; padding: 4px 14px; }
  .meta { text-align: right; }
  .recipient { margin: 16px 0; padding: 8px; background: #f5f5f5; }
  .reference { margin: 8px 0; font-style: italic; }
  table.lines { width: 100%; border-collapse: collapse; margin-top: 12px; }
  table.lines th { text-align: left; border-bottom: 1px solid #222; padding: 4px; }
  table.lines td { border-bottom: 1px solid #ddd; padding: 4px; }
  td.num, th.num { text-align: right; }
  .total { text-align: right; font-size: 16px; font-weight: bold; margin-top: 12px; }
  .footer { margin-top: 32px; border-top: 1px solid #222; padding-top: 8px; }
  .barcode { font-family: "Libre Barcode 39", monospace; font-size: 36px; }
  .barcode-caption { font-size: 10px; letter-spacing: 1px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h2>{{.CompanyName}}</h2>
      <div>CUIT: {{.CompanyCUIT}}</div>
      {{if .CompanyAddr}}<div>{{.CompanyAddr}}</div>{{end}}
    </div>
    <div class="doc-type">NOTA DE CRÉDITO C</div>
    <div class="meta">
      <div><strong>{{.FormattedNumber}}</strong></div>
      <div>Fecha: {{formatDate .IssuedAt}}</div>
    </div>
  </div>

  <div class="recipient">
    <div><strong>{{.RecipientName}}</strong></div>
    <div>{{.RecipientDocLabel}}: {{.RecipientDocument}}</div>
  </div>

  <div class="reference">Comprobante asociado: Factura {{.InvoiceNumber}}{{if .Reason}} ({{.Reason}}){{end}}</div>

  <table class="lines">
    <tr><th>Descripción</th><th class="num">Cant.</th><th class="num">P. Unit.</th><th class="num">Importe</th></tr>
    {{range .Lines}}
    <tr>
      <td>{{.Description}}</td>
      <td class="num">{{formatInt .Quantity}}</td>
      <td class="num">{{formatMoney .UnitPrice}}</td>
      <td class="num">{{formatMoney .Amount}}</td>
    </tr>
    {{end}}
  </table>

  <div class="total">Total {{.Currency}} {{formatMoney .Total}}</div>

  <div class="footer">
    <div>CAE: <strong>{{.CAE}}</strong> &nbsp; Vto. CAE: {{formatDate .CAEExpiry}}</div>
    <div class="barcode">{{.BarcodeDigits}}</div>
    <div class="barcode-caption">{{barcodeDigits .BarcodeDigits}}</div>
  </div>
</body>
</html>`
